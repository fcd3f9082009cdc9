package fixture

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/nerrad567/sigos-core/internal/infrastructure/config"
)

func testHeads() []Head {
	return []Head{
		{ID: 1, Kind: KindLight, Colors: []string{"Red", "YELLOW", "green", "red"}},
		{ID: 2, Kind: KindSemaphore},
		{ID: 3, Kind: KindNone},
	}
}

func TestNew_Valid(t *testing.T) {
	inv, err := New(testHeads(), true, 80)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := inv.HeadIDs(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("HeadIDs() = %v, want [1 2 3]", got)
	}
	if got := inv.RequiredHeads(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("RequiredHeads() = %v, want [1 2]", got)
	}
	if got := inv.LightHeads(); !slices.Equal(got, []int{1}) {
		t.Errorf("LightHeads() = %v, want [1]", got)
	}
	if !inv.NumberPlate() {
		t.Error("NumberPlate() = false, want true")
	}
	if inv.DefaultIntensity() != 80 {
		t.Errorf("DefaultIntensity() = %d, want 80", inv.DefaultIntensity())
	}

	light, ok := inv.Head(1)
	if !ok {
		t.Fatal("Head(1) not found")
	}
	if !slices.Equal(light.Colors, []string{"red", "yellow", "green"}) {
		t.Errorf("light colors = %v, want lower-cased and de-duplicated", light.Colors)
	}
	if !inv.HasColor(1, "GREEN") {
		t.Error("HasColor(1, GREEN) = false, want true")
	}
	if inv.HasColor(2, "red") {
		t.Error("HasColor on a semaphore head should be false")
	}

	sem, _ := inv.Head(2)
	if sem.MinAngle != 0 || sem.MaxAngle != 90 {
		t.Errorf("semaphore range = [%d,%d], want [0,90]", sem.MinAngle, sem.MaxAngle)
	}
	if !sem.AngleInRange(45) || sem.AngleInRange(91) {
		t.Error("AngleInRange() bounds wrong")
	}

	if _, ok := inv.Head(9); ok {
		t.Error("Head(9) found, want missing")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name      string
		heads     []Head
		intensity int
		want      error
	}{
		{name: "no heads", heads: nil, intensity: 100, want: ErrNoHeads},
		{name: "zero id", heads: []Head{{ID: 0, Kind: KindSemaphore}}, intensity: 100, want: ErrInvalidHeadID},
		{
			name:      "duplicate id",
			heads:     []Head{{ID: 1, Kind: KindSemaphore}, {ID: 1, Kind: KindLight, Colors: []string{"red"}}},
			intensity: 100,
			want:      ErrDuplicateHead,
		},
		{name: "light without colors", heads: []Head{{ID: 1, Kind: KindLight}}, intensity: 100, want: ErrNoColors},
		{
			name:      "inverted range",
			heads:     []Head{{ID: 1, Kind: KindSemaphore, MinAngle: 60, MaxAngle: 30}},
			intensity: 100,
			want:      ErrInvalidAngleRange,
		},
		{
			name:      "range beyond 90",
			heads:     []Head{{ID: 1, Kind: KindSemaphore, MinAngle: 0, MaxAngle: 120}},
			intensity: 100,
			want:      ErrInvalidAngleRange,
		},
		{name: "unknown kind", heads: []Head{{ID: 1, Kind: Kind(7)}}, intensity: 100, want: ErrInvalidKind},
		{name: "bad intensity", heads: []Head{{ID: 1, Kind: KindSemaphore}}, intensity: 150, want: ErrInvalidIntensity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.heads, false, tt.intensity)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "semaphore", want: KindSemaphore},
		{in: "Light", want: KindLight},
		{in: "none", want: KindNone},
		{in: "", want: KindNone},
		{in: "lamp", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.SignalConfig{
		NumberPlate:    false,
		LightIntensity: 60,
		Heads: []config.HeadConfig{
			{ID: 1, Type: "light", Colors: []string{"red", "green"}},
			{ID: 2, Type: "semaphore", MinAngle: 10, MaxAngle: 45},
		},
	}

	inv, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}

	h, _ := inv.Head(2)
	if h.Kind != KindSemaphore || h.MinAngle != 10 || h.MaxAngle != 45 {
		t.Errorf("head 2 = %+v, want semaphore 10..45", h)
	}

	if !strings.Contains(inv.String(), "head 1: light colors=red,green") {
		t.Errorf("String() = %q", inv.String())
	}
}

func TestFromConfig_BadType(t *testing.T) {
	cfg := config.SignalConfig{
		LightIntensity: 100,
		Heads:          []config.HeadConfig{{ID: 1, Type: "flag"}},
	}
	if _, err := FromConfig(cfg); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("FromConfig() error = %v, want ErrInvalidKind", err)
	}
}
