package mqtt

import (
	"fmt"
)

// Subscribe registers handler for topic and remembers it so the
// subscription is restored after a reconnect.
//
// Topics may use the + and # wildcards, e.g. Topics{}.AllStatus() to watch
// every controller's status. Handlers run on paho's goroutines with panic
// recovery; a returned error is logged and otherwise ignored.
//
// Example:
//
//	err := client.Subscribe(mqtt.Topics{}.Command(host), 1,
//	    func(topic string, payload []byte) error {
//	        return link.handle(payload)
//	    })
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	switch {
	case topic == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return ErrInvalidQoS
	case handler == nil:
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	case !c.IsConnected():
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{topic: topic, qos: qos, handler: handler}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	var err error
	if !token.WaitTimeout(defaultPublishTimeout) {
		err = fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	} else if tokenErr := token.Error(); tokenErr != nil {
		err = fmt.Errorf("%w: %w", ErrSubscribeFailed, tokenErr)
	}
	if err != nil {
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
	}
	return err
}

// Subscriptions returns the tracked topic patterns.
func (c *Client) Subscriptions() []string {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	topics := make([]string, 0, len(c.subscriptions))
	for t := range c.subscriptions {
		topics = append(topics, t)
	}
	return topics
}
