package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/nerrad567/sigos-core/internal/api"
	"github.com/nerrad567/sigos-core/internal/console"
	"github.com/nerrad567/sigos-core/internal/eventlog"
	"github.com/nerrad567/sigos-core/internal/hardware"
	"github.com/nerrad567/sigos-core/internal/infrastructure/config"
	"github.com/nerrad567/sigos-core/internal/infrastructure/database"
	"github.com/nerrad567/sigos-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/sigos-core/internal/infrastructure/logging"
	"github.com/nerrad567/sigos-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sigos-core/internal/peer"
	"github.com/nerrad567/sigos-core/internal/signal/arbiter"
	"github.com/nerrad567/sigos-core/internal/signal/executor"
	"github.com/nerrad567/sigos-core/internal/telemetry"
	"github.com/nerrad567/sigos-core/migrations"
)

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Path to the YAML configuration
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error { //nolint:gocognit,gocyclo // linear startup sequence
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SigOS Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version).With("host", cfg.Signal.Hostname)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.FromConfig(cfg.Database))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", db.Path())

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	events, err := eventlog.New(cfg.EventLog.Size)
	if err != nil {
		return fmt.Errorf("creating event log: %w", err)
	}
	events.SetLogger(log.Component("eventlog"))
	if cfg.EventLog.Persist {
		events.SetRepository(eventlog.NewSQLiteRepository(db.DB))
	}

	inv, catalog, err := buildCatalog(cfg, log, events)
	if err != nil {
		return err
	}
	log.Info("rule catalog ready",
		"fixtures", inv.String(),
		"rule_set", catalog.RuleSet(),
		"supported", catalog.Len(),
		"rejected", len(catalog.Rejections()),
	)

	// MQTT is optional unless the fixtures are driven over it
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, cfg.Signal.Hostname)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log.Component("mqtt"))
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.OnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.OnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	driver, err := newDriver(cfg, mqttClient)
	if err != nil {
		return err
	}
	log.Info("hardware driver ready", "driver", cfg.Signal.Hardware.Driver)

	exec := executor.New(inv, driver, cfg.Signal.Executor.Preflight)
	exec.SetLogger(log.Component("executor"))
	exec.SetSink(events)

	arb, err := arbiter.New(arbiter.Options{
		Catalog:       catalog,
		Executor:      exec,
		StartupSource: cfg.Signal.Hostname,
		Sink:          events,
		Logger:        log.Component("arbiter"),
	})
	if err != nil {
		return fmt.Errorf("creating arbitrator: %w", err)
	}

	// Observers
	transitions := eventlog.NewTransitionRepository(db.DB)
	transitions.SetLogger(log.Component("transitions"))
	arb.AddObserver(transitions)

	metrics := telemetry.NewMetrics()
	arb.AddObserver(metrics)

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetLogger(log.Component("influxdb"))
		arb.AddObserver(telemetry.NewInfluxRecorder(influxClient, cfg.Signal.Hostname))
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	go hub.Run(ctx)
	arb.AddObserver(hub)
	events.SetBroadcaster(hub)

	var link *peer.Link
	if mqttClient != nil {
		link = peer.New(mqttClient, arb, cfg.Signal.Hostname, mqttClient.QoS())
		link.SetLogger(log.Component("peer"))
		arb.AddObserver(link)
		mqttClient.OnConnect(link.Resync)
	}

	if startErr := arb.Start(ctx); startErr != nil {
		return fmt.Errorf("starting arbitrator: %w", startErr)
	}
	log.Info("default rule displayed", "rule", arb.ActiveRule().ID)

	if cfg.Console.Enabled {
		addr := net.JoinHostPort(cfg.Console.Host, strconv.Itoa(cfg.Console.Port))
		srv := console.NewServer(addr, console.NewSignalTable(arb, events), cfg.Console.Banner)
		srv.SetLogger(log.Component("console"))
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting console: %w", startErr)
		}
		defer func() {
			log.Info("stopping console")
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error stopping console", "error", closeErr)
			}
		}()
	}

	if link != nil {
		if startErr := link.Start(ctx); startErr != nil {
			return fmt.Errorf("starting peer link: %w", startErr)
		}
		log.Info("peer link started")
	}

	if cfg.API.Enabled {
		srv, apiErr := api.New(api.Deps{
			Config:      cfg.API,
			WS:          cfg.WebSocket,
			Security:    cfg.Security,
			Logger:      log.Component("api"),
			Arbiter:     arb,
			Catalog:     catalog,
			EventLog:    events,
			Transitions: transitions,
			Metrics:     metrics,
			ExternalHub: hub,
			Version:     version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error stopping API server", "error", closeErr)
			}
		}()
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API, console, InfluxDB, MQTT, database.

	log.Info("SigOS Core stopped")
	return nil
}

// newDriver selects the hardware driver named by signal.hardware.driver.
func newDriver(cfg *config.Config, mqttClient *mqtt.Client) (executor.Driver, error) {
	switch cfg.Signal.Hardware.Driver {
	case config.DriverSimulated:
		return hardware.NewSimulator(), nil
	case config.DriverMQTT:
		if mqttClient == nil {
			return nil, fmt.Errorf("hardware driver %q requires mqtt.enabled", config.DriverMQTT)
		}
		drv, err := hardware.NewMQTTDriver(mqttClient, cfg.Signal.Hostname, mqttClient.QoS())
		if err != nil {
			return nil, fmt.Errorf("creating MQTT driver: %w", err)
		}
		return drv, nil
	default:
		return nil, fmt.Errorf("unknown hardware driver %q", cfg.Signal.Hardware.Driver)
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
