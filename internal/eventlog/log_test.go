package eventlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []any
}

func (b *recordingBroadcaster) Broadcast(channel string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if channel == Channel {
		b.events = append(b.events, payload)
	}
}

type failingRepo struct{ calls int }

func (r *failingRepo) Create(context.Context, *Entry) error {
	r.calls++
	return errors.New("disk full")
}

func (r *failingRepo) List(context.Context, Filter) (*ListResult, error) {
	return nil, errors.New("disk full")
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("New(0) error = %v, want ErrInvalidSize", err)
	}
}

func TestLog_RecordAndEntries(t *testing.T) {
	l, err := New(3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := l.Entries(); len(got) != 0 {
		t.Fatalf("Entries() on empty log = %d entries, want 0", len(got))
	}

	l.Record("arbiter", "one")
	l.Record("executor", "two")

	got := l.Entries()
	if len(got) != 2 {
		t.Fatalf("Entries() = %d entries, want 2", len(got))
	}
	if got[0].Message != "one" || got[1].Message != "two" {
		t.Errorf("Entries() order = [%s %s], want [one two]", got[0].Message, got[1].Message)
	}
	if got[1].Source != "executor" {
		t.Errorf("Source = %q, want executor", got[1].Source)
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Error("entry missing ID or CreatedAt")
	}
}

func TestLog_Wraparound(t *testing.T) {
	l, _ := New(3) //nolint:errcheck // size is valid
	for i := 1; i <= 5; i++ {
		l.Record("test", fmt.Sprintf("msg-%d", i))
	}

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	got := l.Entries()
	want := []string{"msg-3", "msg-4", "msg-5"}
	for i, w := range want {
		if got[i].Message != w {
			t.Errorf("Entries()[%d] = %q, want %q", i, got[i].Message, w)
		}
	}
}

func TestLog_EntryIndexesFromNewest(t *testing.T) {
	l, _ := New(4) //nolint:errcheck // size is valid
	for i := 1; i <= 6; i++ {
		l.Record("test", fmt.Sprintf("msg-%d", i))
	}

	tests := []struct {
		index   int
		want    string
		wantErr bool
	}{
		{0, "msg-6", false},
		{1, "msg-5", false},
		{3, "msg-3", false},
		{4, "", true},
		{-1, "", true},
	}
	for _, tt := range tests {
		e, err := l.Entry(tt.index)
		if tt.wantErr {
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Entry(%d) error = %v, want ErrOutOfRange", tt.index, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Entry(%d) error = %v", tt.index, err)
			continue
		}
		if e.Message != tt.want {
			t.Errorf("Entry(%d) = %q, want %q", tt.index, e.Message, tt.want)
		}
	}
}

func TestLog_BroadcastsAndSurvivesRepoFailure(t *testing.T) {
	l, _ := New(2) //nolint:errcheck // size is valid
	b := &recordingBroadcaster{}
	repo := &failingRepo{}
	l.SetBroadcaster(b)
	l.SetRepository(repo)

	l.Record("arbiter", "released 0 Default")

	if repo.calls != 1 {
		t.Errorf("repository Create calls = %d, want 1", repo.calls)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after repository failure", l.Len())
	}
	if len(b.events) != 1 {
		t.Fatalf("broadcast events = %d, want 1", len(b.events))
	}
	if e, ok := b.events[0].(Entry); !ok || e.Message != "released 0 Default" {
		t.Errorf("broadcast payload = %#v", b.events[0])
	}
}

func TestLog_ConcurrentRecord(t *testing.T) {
	l, _ := New(32) //nolint:errcheck // size is valid
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Record(fmt.Sprintf("src-%d", g), "msg")
				_ = l.Entries()
			}
		}(g)
	}
	wg.Wait()

	if l.Len() != 32 {
		t.Errorf("Len() = %d, want 32", l.Len())
	}
}

func TestLog_EntryIDsUnique(t *testing.T) {
	l, _ := New(500) //nolint:errcheck // size is valid
	for i := 0; i < 500; i++ {
		l.Record("box-12", "msg")
	}

	seen := make(map[string]bool)
	for _, e := range l.Entries() {
		if len(e.ID) != len("evt-")+36 || !strings.HasPrefix(e.ID, "evt-") {
			t.Fatalf("ID = %q, want evt- followed by a full UUID", e.ID)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate ID %q", e.ID)
		}
		seen[e.ID] = true
	}
}
