// Package influxdb provides InfluxDB connectivity for SigOS Core.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched writes and health monitoring.
//
// # Purpose
//
// Every change of the displayed rule becomes a signal_rule point (host,
// rule, cause tags; priority, ledger depth and execution result fields).
// Failed executions also write a signal_execution point. Layout operators
// chart these to see how often a signal was pre-empted and by what.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteRuleTransition(influxdb.RuleSample{Host: "box-12", RuleID: "300"}, nil)
//
// # Error Handling
//
// Write operations are non-blocking. Batch errors go to the Logger set with
// SetLogger and are counted by WriteErrors. Connection and health check
// errors are returned directly.
package influxdb
