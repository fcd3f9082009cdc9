package hardware

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nerrad567/sigos-core/internal/infrastructure/mqtt"
)

// Publisher is the subset of *mqtt.Client the driver needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// FixtureCommand is the JSON payload sent to a head decoder.
type FixtureCommand struct {
	ID        string `json:"id"`
	Head      int    `json:"head,omitempty"`
	Kind      string `json:"kind"`
	Angle     *int   `json:"angle,omitempty"`
	Color     string `json:"color,omitempty"`
	Intensity int    `json:"intensity,omitempty"`
	Flashing  bool   `json:"flashing,omitempty"`
}

// Fixture command kinds.
const (
	CommandSemaphore = "semaphore"
	CommandLight     = "light"
	CommandBlank     = "blank"
)

// MQTTDriver publishes fixture commands for decoder boards. A publish
// failure is reported as a hardware rejection.
type MQTTDriver struct {
	pub  Publisher
	host string
	qos  byte
}

// NewMQTTDriver creates a driver publishing under sigos/<host>/fixture.
func NewMQTTDriver(pub Publisher, host string, qos byte) (*MQTTDriver, error) {
	if pub == nil {
		return nil, ErrNoPublisher
	}
	return &MQTTDriver{pub: pub, host: host, qos: qos}, nil
}

// ApplySemaphore publishes an arm angle for head.
func (d *MQTTDriver) ApplySemaphore(ctx context.Context, head, angle int) error {
	return d.send(ctx, mqtt.Topics{}.Fixture(d.host, head), FixtureCommand{
		Head:  head,
		Kind:  CommandSemaphore,
		Angle: &angle,
	})
}

// ApplyLight publishes a light command for head.
func (d *MQTTDriver) ApplyLight(ctx context.Context, head int, color string, intensity int, flashing bool) error {
	return d.send(ctx, mqtt.Topics{}.Fixture(d.host, head), FixtureCommand{
		Head:      head,
		Kind:      CommandLight,
		Color:     color,
		Intensity: intensity,
		Flashing:  flashing,
	})
}

// BlankAllLights publishes the blank command.
func (d *MQTTDriver) BlankAllLights(ctx context.Context) error {
	return d.send(ctx, mqtt.Topics{}.FixtureBlank(d.host), FixtureCommand{Kind: CommandBlank})
}

func (d *MQTTDriver) send(ctx context.Context, topic string, cmd FixtureCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd.ID = uuid.NewString()
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding fixture command: %w", err)
	}
	if err := d.pub.Publish(topic, payload, d.qos, false); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRejected, topic, err)
	}
	return nil
}
