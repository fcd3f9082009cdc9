// Package config handles loading and validating SigOS Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with SIGOS_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// The signal section describes the controller's fixtures. It is turned into a
// fixture inventory at startup and never changes while the process runs:
//
//	signal:
//	  hostname: "box-12"
//	  rules_file: "./configs/rules.jsonc"
//	  number_plate: false
//	  heads:
//	    - { id: 1, type: light, colors: [red, yellow, green] }
//	    - { id: 2, type: semaphore, min_angle: 0, max_angle: 45 }
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Signal.Hostname)
package config
