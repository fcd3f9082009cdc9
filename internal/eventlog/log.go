package eventlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Channel is the WebSocket channel new entries are broadcast on.
const Channel = "log.entry"

// persistTimeout bounds a single signal_events insert.
const persistTimeout = 2 * time.Second

// Entry is one log record.
type Entry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Logger defines the logging interface the Log mirrors entries to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Broadcaster pushes events to live subscribers. *api.Hub satisfies it.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// Log is a bounded, thread-safe ring of the most recent entries.
//
// Record never blocks on a slow subscriber and never fails: persistence
// errors are logged and the in-memory entry is kept.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool

	logger Logger
	repo   Repository
	bcast  Broadcaster
	now    func() time.Time
}

// New creates a Log holding at most size entries.
func New(size int) (*Log, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	return &Log{
		entries: make([]Entry, size),
		logger:  noopLogger{},
		now:     time.Now,
	}, nil
}

// SetLogger sets the structured logger entries are mirrored to.
func (l *Log) SetLogger(logger Logger) {
	l.mu.Lock()
	l.logger = logger
	l.mu.Unlock()
}

// SetRepository enables persistence to signal_events.
func (l *Log) SetRepository(repo Repository) {
	l.mu.Lock()
	l.repo = repo
	l.mu.Unlock()
}

// SetBroadcaster enables live push of new entries.
func (l *Log) SetBroadcaster(b Broadcaster) {
	l.mu.Lock()
	l.bcast = b
	l.mu.Unlock()
}

// Record appends a message attributed to source, evicting the oldest entry
// when the ring is full.
func (l *Log) Record(source, message string) {
	e := Entry{
		ID:      "evt-" + uuid.NewString(),
		Source:  source,
		Message: message,
	}

	l.mu.Lock()
	e.CreatedAt = l.now().UTC()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
	logger, repo, bcast := l.logger, l.repo, l.bcast
	l.mu.Unlock()

	logger.Info("signal event", "source", source, "message", message)

	if repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := repo.Create(ctx, &e); err != nil {
			logger.Warn("persisting signal event failed", "error", err)
		}
		cancel()
	}
	if bcast != nil {
		bcast.Broadcast(Channel, e)
	}
}

// Entries returns the retained entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.full {
		out := make([]Entry, l.next)
		copy(out, l.entries[:l.next])
		return out
	}
	out := make([]Entry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}

// Entry returns the i-th most recent entry; 0 is the newest.
func (l *Log) Entry(i int) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := l.lenLocked()
	if i < 0 || i >= n {
		return Entry{}, ErrOutOfRange
	}
	size := len(l.entries)
	return l.entries[(l.next-1-i+size)%size], nil
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lenLocked()
}

// Size returns the ring capacity.
func (l *Log) Size() int {
	return len(l.entries)
}

func (l *Log) lenLocked() int {
	if l.full {
		return len(l.entries)
	}
	return l.next
}
