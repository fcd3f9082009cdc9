package hardware

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// HeadState is the simulated output of one head.
type HeadState struct {
	Head      int    `json:"head"`
	Angle     int    `json:"angle,omitempty"`
	Color     string `json:"color,omitempty"`
	Intensity int    `json:"intensity,omitempty"`
	Flashing  bool   `json:"flashing,omitempty"`
	Lit       bool   `json:"lit"`
}

// Simulator is an in-memory driver. It records every call in order and can
// be told to reject specific heads.
type Simulator struct {
	mu     sync.Mutex
	heads  map[int]HeadState
	calls  []string
	reject map[int]error
}

// NewSimulator creates a Simulator with every head dark.
func NewSimulator() *Simulator {
	return &Simulator{
		heads:  make(map[int]HeadState),
		reject: make(map[int]error),
	}
}

// Reject makes every subsequent command to head fail with err wrapped in
// ErrRejected. A nil err clears the rejection.
func (s *Simulator) Reject(head int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.reject, head)
		return
	}
	s.reject[head] = err
}

// ApplySemaphore sets the arm angle of head.
func (s *Simulator) ApplySemaphore(ctx context.Context, head, angle int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rejected(head); err != nil {
		return err
	}
	st := s.heads[head]
	st.Head = head
	st.Angle = angle
	s.heads[head] = st
	s.calls = append(s.calls, fmt.Sprintf("semaphore %d %d", head, angle))
	return nil
}

// ApplyLight lights head.
func (s *Simulator) ApplyLight(ctx context.Context, head int, color string, intensity int, flashing bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rejected(head); err != nil {
		return err
	}
	s.heads[head] = HeadState{Head: head, Color: color, Intensity: intensity, Flashing: flashing, Lit: true}
	s.calls = append(s.calls, fmt.Sprintf("light %d %s %d %t", head, color, intensity, flashing))
	return nil
}

// BlankAllLights switches every lit head off. Semaphore arms keep their angle.
func (s *Simulator) BlankAllLights(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range s.heads {
		if st.Lit {
			s.heads[id] = HeadState{Head: id}
		}
	}
	s.calls = append(s.calls, "blank")
	return nil
}

func (s *Simulator) rejected(head int) error {
	if err, ok := s.reject[head]; ok {
		return fmt.Errorf("%w: head %d: %w", ErrRejected, head, err)
	}
	return nil
}

// Calls returns the recorded commands, oldest first.
func (s *Simulator) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Reset clears the call history.
func (s *Simulator) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// State returns the simulated output of head.
func (s *Simulator) State(head int) (HeadState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.heads[head]
	return st, ok
}

// States returns every head that has received a command, by head id.
func (s *Simulator) States() []HeadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HeadState, 0, len(s.heads))
	for _, st := range s.heads {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Head < out[j].Head })
	return out
}
