package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every SigOS topic.
//
// Layout: sigos/{host}/{channel}[/{detail}]
const TopicPrefix = "sigos"

// Topics provides builders for SigOS MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topics.Command("box-12")
//	// Returns: "sigos/box-12/command"
type Topics struct{}

// Status returns the retained online/offline topic of a controller.
//
// Example: sigos/box-12/status
func (Topics) Status(host string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, host)
}

// Command returns the topic peers publish request/release commands to.
//
// Example: sigos/box-12/command
func (Topics) Command(host string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefix, host)
}

// Ack returns the topic a controller answers commands on.
//
// Example: sigos/box-12/ack
func (Topics) Ack(host string) string {
	return fmt.Sprintf("%s/%s/ack", TopicPrefix, host)
}

// Aspect returns the retained displayed-rule topic of a controller.
//
// Example: sigos/box-12/aspect
func (Topics) Aspect(host string) string {
	return fmt.Sprintf("%s/%s/aspect", TopicPrefix, host)
}

// Fixture returns the command topic of one signal head.
//
// Example: sigos/box-12/fixture/2
func (Topics) Fixture(host string, head int) string {
	return fmt.Sprintf("%s/%s/fixture/%d", TopicPrefix, host, head)
}

// FixtureBlank returns the topic that switches every light head off.
//
// Example: sigos/box-12/fixture/blank
func (Topics) FixtureBlank(host string) string {
	return fmt.Sprintf("%s/%s/fixture/blank", TopicPrefix, host)
}

// AllStatus matches every controller's status topic.
//
// Pattern: sigos/+/status
func (Topics) AllStatus() string {
	return TopicPrefix + "/+/status"
}

// AllAspects matches every controller's aspect topic.
//
// Pattern: sigos/+/aspect
func (Topics) AllAspects() string {
	return TopicPrefix + "/+/aspect"
}

// HostFromTopic extracts the controller hostname from a sigos/{host}/... topic.
func HostFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[0] != TopicPrefix || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
