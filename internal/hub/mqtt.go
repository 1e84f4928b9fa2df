package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/rs/zerolog"
	"tvremote/internal/logger"
	"tvremote/internal/platform"
	"tvremote/internal/remote"
)

// ResultTopic is the last topic segment results are published on
const ResultTopic = "result"

const connectTimeout = 30 * time.Second

// CommandPayload is the body of a service call received over MQTT
type CommandPayload struct {
	Command    []string `json:"command,omitempty"`
	NumRepeats *int     `json:"num_repeats,omitempty"`
	Nonce      string   `json:"nonce,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
}

// MQTTService receives remote service calls from an MQTT broker. Commands are
// read from <prefix>/<object_id>/<service> and answered on
// <prefix>/<object_id>/result.
type MQTTService struct {
	config  *Config
	manager *EntryManager
	logger  zerolog.Logger

	mu       sync.Mutex
	conn     *autopaho.ConnectionManager
	router   paho.Router
	stopping bool
	wg       sync.WaitGroup
}

// NewMQTTService creates a new MQTT command channel
func NewMQTTService(config *Config, manager *EntryManager) *MQTTService {
	return &MQTTService{
		config:  config,
		manager: manager,
		logger:  logger.ForComponent("mqtt"),
		router:  paho.NewStandardRouter(),
	}
}

// CommandTopics lists the subscriptions for every supported service
func (s *MQTTService) CommandTopics() []string {
	topics := make([]string, 0, len(remote.Services))
	for _, service := range remote.Services {
		topics = append(topics, fmt.Sprintf("%s/+/%s", s.config.MQTT.TopicPrefix, service))
	}
	return topics
}

// Start connects to the broker and waits for the first connection. The
// connection lives until ctx is cancelled or Stop is called.
func (s *MQTTService) Start(ctx context.Context) error {
	brokerURL, err := url.Parse(s.config.MQTT.Broker)
	if err != nil {
		return fmt.Errorf("mqtt: invalid broker url: %w", err)
	}

	for _, topic := range s.CommandTopics() {
		s.router.RegisterHandler(topic, func(publish *paho.Publish) {
			s.handlePublish(ctx, publish.Topic, publish.Payload)
		})
	}

	cfg := autopaho.ClientConfig{
		ServerUrls:            []*url.URL{brokerURL},
		KeepAlive:             s.config.MQTT.KeepAlive,
		SessionExpiryInterval: 60,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, connAck *paho.Connack) {
			s.logger.Info().Str("broker", brokerURL.String()).Msg("MQTT connected")
			s.subscribe(ctx, cm)
		},
		OnConnectError: func(err error) {
			s.logger.Error().Err(err).Msg("MQTT connection error")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: s.config.MQTT.ClientID,
			OnClientError: func(err error) {
				s.logger.Error().Err(err).Msg("MQTT client error")
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				s.logger.Warn().Int("reason", int(d.ReasonCode)).Msg("Disconnected from MQTT broker")
			},
		},
	}
	if s.config.MQTT.Username != "" {
		cfg.ConnectUsername = s.config.MQTT.Username
		cfg.ConnectPassword = []byte(s.config.MQTT.Password)
	}

	// Held until conn is assigned so the first OnConnectionUp sees it
	s.mu.Lock()
	s.stopping = false
	s.logger.Info().Str("broker", brokerURL.String()).Msg("Connecting to MQTT broker")
	conn, err := autopaho.NewConnection(ctx, cfg)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("mqtt: connect: %w", err)
	}
	s.conn = conn
	s.mu.Unlock()

	conn.AddOnPublishReceived(func(rx autopaho.PublishReceived) (bool, error) {
		s.router.Route(rx.Packet.Packet())
		return true, nil
	})

	awaitCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := conn.AwaitConnection(awaitCtx); err != nil {
		return fmt.Errorf("mqtt: wait for connection: %w", err)
	}

	return nil
}

func (s *MQTTService) subscribe(ctx context.Context, cm *autopaho.ConnectionManager) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &paho.Subscribe{}
	for _, topic := range s.CommandTopics() {
		sub.Subscriptions = append(sub.Subscriptions, paho.SubscribeOptions{Topic: topic, QoS: 1})
	}

	if _, err := cm.Subscribe(ctx, sub); err != nil {
		s.logger.Error().Err(err).Msg("Failed to subscribe to command topics")
		return
	}
	s.logger.Debug().Strs("topics", s.CommandTopics()).Msg("Subscribed to command topics")
}

// Stop disconnects from the broker after pending results are published
func (s *MQTTService) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	s.logger.Info().Msg("Disconnecting from MQTT broker")
	return conn.Disconnect(ctx)
}

func (s *MQTTService) handlePublish(ctx context.Context, topic string, payload []byte) {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		s.logger.Debug().Str("topic", topic).Msg("Dropping MQTT command received during shutdown")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		objectID, response, err := s.HandleCommand(ctx, topic, payload)
		if err != nil {
			s.logger.Warn().Err(err).Str("topic", topic).Msg("Ignoring MQTT command")
			return
		}

		if err := s.publishResult(ctx, objectID, response); err != nil {
			s.logger.Error().Err(err).Str("object_id", objectID).Msg("Failed to publish result")
		}
	}()
}

// HandleCommand executes the service call carried by a command message and
// returns the object id it addressed together with the response.
func (s *MQTTService) HandleCommand(ctx context.Context, topic string, payload []byte) (string, *ServiceResponse, error) {
	objectID, service, err := s.parseTopic(topic)
	if err != nil {
		return "", nil, err
	}

	var cmd CommandPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return objectID, &ServiceResponse{
				Success:  false,
				Service:  string(service),
				EntityID: remote.Domain + "." + objectID,
				Code:     CodeInvalidRequest,
				Error:    fmt.Sprintf("invalid JSON payload: %v", err),
			}, nil
		}
	}

	s.logger.Debug().
		Str("object_id", objectID).
		Str("service", string(service)).
		Msg("Received MQTT command")

	response := s.manager.CallServiceWithNonce(ctx, cmd.Nonce, remote.ServiceCall{
		Service:    service,
		EntityID:   remote.Domain + "." + objectID,
		Command:    cmd.Command,
		NumRepeats: cmd.NumRepeats,
		Context:    platform.NewContext(cmd.UserID),
	})

	return objectID, response, nil
}

func (s *MQTTService) parseTopic(topic string) (string, remote.Service, error) {
	rest, ok := strings.CutPrefix(topic, s.config.MQTT.TopicPrefix+"/")
	if !ok {
		return "", "", fmt.Errorf("topic %q outside prefix %q", topic, s.config.MQTT.TopicPrefix)
	}

	objectID, name, ok := strings.Cut(rest, "/")
	if !ok || objectID == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("malformed command topic %q", topic)
	}

	service, err := remote.ParseService(name)
	if err != nil {
		return "", "", err
	}

	return objectID, service, nil
}

func (s *MQTTService) publishResult(ctx context.Context, objectID string, response *ServiceResponse) error {
	body, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	pubCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = conn.Publish(pubCtx, &paho.Publish{
		QoS:     1,
		Topic:   fmt.Sprintf("%s/%s/%s", s.config.MQTT.TopicPrefix, objectID, ResultTopic),
		Payload: body,
	})
	return err
}
