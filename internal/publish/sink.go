// Package publish defines the outbound/inbound message boundary between
// the bridge and the MQTT fabric, independent of any particular broker
// client so the dispatcher and sampler can be tested against a fake.
package publish

import "context"

// Sink is everything the rest of the bridge needs from the publish
// transport: the four outbound channels plus a connectivity check for
// the health supervisor. There is exactly one production implementation,
// internal/publish/mqttsink.Client.
type Sink interface {
	PublishData(ctx context.Context, data map[string]any) error
	PublishStatus(ctx context.Context, status map[string]any) error
	PublishAlert(ctx context.Context, alertType, message, severity string) error
	PublishCommandResponse(ctx context.Context, commandID string, success bool, result any, errMsg string) error
	Connected() bool
}

// CommandSubmitter is the callback the publish client invokes for every
// inbound command message it receives, device-specific or broadcast. The
// coordinator binds this to queue.Queue.Submit at construction time;
// the publish client never holds a mutable reference to the queue itself.
type CommandSubmitter func(payload []byte) (commandID string, err error)
