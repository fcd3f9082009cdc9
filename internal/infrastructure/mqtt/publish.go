package mqtt

import (
	"fmt"
)

// maxPayloadSize caps a single message. SigOS payloads (fixture commands,
// acks, aspect state) are a few hundred bytes; anything near this is a bug.
const maxPayloadSize = 64 << 10

// Publish sends payload to topic and waits for the broker to accept it.
//
// Retain state topics (sigos/<host>/aspect, sigos/<host>/status) so late
// subscribers see the current value. Commands, acks and fixture commands
// are never retained: replaying an old fixture command after a restart
// would move a signal head.
//
// Example:
//
//	topic := mqtt.Topics{}.Fixture("box-12", 1)
//	err := client.Publish(topic, []byte(`{"head":1,"kind":"light","color":"red"}`), 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	switch {
	case topic == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return ErrInvalidQoS
	case len(payload) > maxPayloadSize:
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	case !c.IsConnected():
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}
