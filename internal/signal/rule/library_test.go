package rule

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const testLibrary = `{
  // Sample rule book.
  "rule-set": "IBLS",
  "source": "IBLS operating rules",
  "author": "test",
  "default-rule": 292,
  "rules": [
    {
      "rule": 292,
      "name": "Stop",
      "indication": "Stop.",
      "priority": 1,
      "condition": null,
      "aspect": "light head-id:1 color:red",
    },
    {
      "rule": "281A",
      "name": "Clear",
      "indication": "Proceed.",
      "priority": 5,
      "aspect": [
        "light head-id:1 color:green; light head-id:2 color:red",
        "light head-id:1 color:green",
      ],
    },
  ],
}`

func TestParseLibrary(t *testing.T) {
	lib, err := ParseLibrary([]byte(testLibrary))
	if err != nil {
		t.Fatalf("ParseLibrary() error = %v", err)
	}

	if lib.RuleSet != "IBLS" {
		t.Errorf("RuleSet = %q, want IBLS", lib.RuleSet)
	}
	if lib.DefaultRule != "292" {
		t.Errorf("DefaultRule = %q, want 292", lib.DefaultRule)
	}
	if len(lib.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(lib.Rules))
	}
	if lib.Rules[1].ID != "281A" {
		t.Errorf("Rules[1].ID = %q, want 281A", lib.Rules[1].ID)
	}
	if !slices.Equal([]string(lib.Rules[0].Aspects), []string{"light head-id:1 color:red"}) {
		t.Errorf("single aspect string not wrapped: %v", lib.Rules[0].Aspects)
	}
	if len(lib.Rules[1].Aspects) != 2 {
		t.Errorf("len(Rules[1].Aspects) = %d, want 2", len(lib.Rules[1].Aspects))
	}
}

func TestParseLibrary_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "not json", data: `rules: []`, want: ErrInvalidLibrary},
		{name: "no default", data: `{"rules": []}`, want: ErrNoDefaultRule},
		{name: "bad id type", data: `{"default-rule": 1, "rules": [{"rule": true}]}`, want: ErrInvalidLibrary},
		{name: "bad aspect type", data: `{"default-rule": 1, "rules": [{"rule": 1, "aspect": 7}]}`, want: ErrInvalidLibrary},
		{name: "missing id", data: `{"default-rule": 1, "rules": [{"name": "x", "aspect": "light"}]}`, want: ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLibrary([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("ParseLibrary() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.jsonc")
	if err := os.WriteFile(path, []byte(testLibrary), 0600); err != nil {
		t.Fatalf("failed to write library: %v", err)
	}

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v", err)
	}
	if len(lib.Rules) != 2 {
		t.Errorf("len(Rules) = %d, want 2", len(lib.Rules))
	}

	if _, err := LoadLibrary(filepath.Join(t.TempDir(), "missing.jsonc")); err == nil {
		t.Error("LoadLibrary() expected error for missing file")
	}
}
