package hardware

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type mockPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, published{topic, payload, qos, retained})
	return nil
}

func TestNewMQTTDriver_RequiresPublisher(t *testing.T) {
	if _, err := NewMQTTDriver(nil, "box-12", 1); !errors.Is(err, ErrNoPublisher) {
		t.Errorf("NewMQTTDriver(nil) error = %v, want ErrNoPublisher", err)
	}
}

func TestMQTTDriver_Publishes(t *testing.T) {
	pub := &mockPublisher{}
	d, err := NewMQTTDriver(pub, "box-12", 1)
	if err != nil {
		t.Fatalf("NewMQTTDriver() error = %v", err)
	}
	ctx := context.Background()

	if err := d.BlankAllLights(ctx); err != nil {
		t.Fatalf("BlankAllLights() error = %v", err)
	}
	if err := d.ApplySemaphore(ctx, 2, 0); err != nil {
		t.Fatalf("ApplySemaphore() error = %v", err)
	}
	if err := d.ApplyLight(ctx, 1, "yellow", 60, true); err != nil {
		t.Fatalf("ApplyLight() error = %v", err)
	}

	if len(pub.msgs) != 3 {
		t.Fatalf("published %d messages, want 3", len(pub.msgs))
	}

	wantTopics := []string{"sigos/box-12/fixture/blank", "sigos/box-12/fixture/2", "sigos/box-12/fixture/1"}
	for i, w := range wantTopics {
		if pub.msgs[i].topic != w {
			t.Errorf("msg %d topic = %q, want %q", i, pub.msgs[i].topic, w)
		}
		if pub.msgs[i].retained || pub.msgs[i].qos != 1 {
			t.Errorf("msg %d retained=%v qos=%d", i, pub.msgs[i].retained, pub.msgs[i].qos)
		}
	}

	var sem FixtureCommand
	if err := json.Unmarshal(pub.msgs[1].payload, &sem); err != nil {
		t.Fatalf("semaphore payload: %v", err)
	}
	if sem.Kind != CommandSemaphore || sem.Angle == nil || *sem.Angle != 0 || sem.ID == "" {
		t.Errorf("semaphore command = %+v", sem)
	}

	var light FixtureCommand
	if err := json.Unmarshal(pub.msgs[2].payload, &light); err != nil {
		t.Fatalf("light payload: %v", err)
	}
	if light.Kind != CommandLight || light.Color != "yellow" || light.Intensity != 60 || !light.Flashing {
		t.Errorf("light command = %+v", light)
	}
}

func TestMQTTDriver_PublishFailureIsRejection(t *testing.T) {
	pub := &mockPublisher{err: errors.New("mqtt: client not connected")}
	d, _ := NewMQTTDriver(pub, "box-12", 1) //nolint:errcheck // publisher is non-nil

	if err := d.ApplyLight(context.Background(), 1, "red", 100, false); !errors.Is(err, ErrRejected) {
		t.Errorf("ApplyLight() error = %v, want ErrRejected", err)
	}
}
