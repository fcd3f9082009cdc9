// Package mqtt provides MQTT client connectivity for SigOS Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// Controllers on a layout share one broker. Each owns the topics under
// sigos/<host>/: peers send request/release commands to .../command and read
// answers on .../ack, the displayed rule is retained on .../aspect, and the
// MQTT fixture driver addresses signal heads under .../fixture/<head>.
//
//	controller A ↔ broker ↔ controller B
//	                 ↕
//	          fixture decoders
//
// # Security Considerations
//
//   - TLS should be enabled when the broker is reachable beyond the layout LAN
//   - Credentials are validated against broker ACL
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Signal.Hostname)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllStatus(), 1,
//	    func(topic string, payload []byte) error {
//	        host, _ := mqtt.HostFromTopic(topic)
//	        log.Printf("%s: %s", host, payload)
//	        return nil
//	    })
package mqtt
