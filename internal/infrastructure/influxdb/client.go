package influxdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/sigos-core/internal/infrastructure/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds
)

// Logger receives asynchronous write failures.
type Logger interface {
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Client writes rule telemetry to an InfluxDB v2 bucket.
//
// Writes are batched by the underlying non-blocking WriteAPI, so a slow or
// unreachable server never stalls the arbitrator. Failures surface through
// the Logger and the WriteErrors counter.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	cfg      config.InfluxDBConfig

	connected   atomic.Bool
	writeErrors atomic.Uint64

	mu     sync.RWMutex
	logger Logger
}

// Connect creates the client, pings the server and starts the batched
// write API.
//
// Parameters:
//   - cfg: InfluxDB configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: ErrDisabled, or ErrConnectionFailed when the ping fails
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushSeconds := cfg.FlushInterval
	if flushSeconds <= 0 {
		flushSeconds = defaultFlushInterval
	}

	// #nosec G115 -- both values are positive after the defaults above
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(time.Duration(flushSeconds) * time.Second / time.Millisecond))
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	switch {
	case err != nil:
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	case !healthy:
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		cfg:      cfg,
		logger:   noopLogger{},
	}
	c.connected.Store(true)

	go c.drainErrors(c.writeAPI.Errors())

	return c, nil
}

// SetLogger sets the logger for asynchronous write failures.
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// WriteErrors returns the number of batches the server refused since Connect.
func (c *Client) WriteErrors() uint64 {
	return c.writeErrors.Load()
}

func (c *Client) drainErrors(errs <-chan error) {
	for err := range errs {
		c.writeErrors.Add(1)
		c.mu.RLock()
		l := c.logger
		c.mu.RUnlock()
		l.Error("influxdb write failed", "bucket", c.cfg.Bucket, "error", err)
	}
}

// Close flushes pending points and closes the connection. It is safe on a
// zero Client and safe to call twice.
func (c *Client) Close() error {
	if c.client == nil || !c.connected.Swap(false) {
		return nil
	}
	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected reports whether Connect succeeded and Close has not run.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Flush blocks until buffered points are sent. No-op once closed.
func (c *Client) Flush() {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.Flush()
}
