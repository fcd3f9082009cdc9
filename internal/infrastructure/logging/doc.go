// Package logging provides structured logging for SigOS Core.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same shape: service and version on each record, and a
// component attribute on sub-loggers.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	arb := logger.Component("arbiter")
//	arb.Info("rule activated", "rule", "281", "source", "box-12")
//
// Never log secrets, tokens or MQTT passwords.
package logging
