package hub

import "context"

// Receive passes a message down the same path the broker router uses
func (s *MQTTService) Receive(ctx context.Context, topic string, payload []byte) {
	s.handlePublish(ctx, topic, payload)
}
