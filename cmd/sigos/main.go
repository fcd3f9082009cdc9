// SigOS Core - model railway signal controller
//
// This is the main entry point for one signal mast. It loads the mast's
// fixture inventory and rule library, arbitrates rule requests from the
// console, REST API and peer controllers, and drives the hardware.
//
//	sigos serve      run the controller (default)
//	sigos catalog    print the rules this mast can display
//	sigos token      mint a bearer token for a remote requester
//	sigos version    print build information
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/sigos-core/internal/auth"
	"github.com/nerrad567/sigos-core/internal/infrastructure/config"
	"github.com/nerrad567/sigos-core/internal/infrastructure/logging"
	"github.com/nerrad567/sigos-core/internal/signal/fixture"
	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C and SIGTERM so deferred Close calls run.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), getConfigPath(configPath))
	}

	cmd := &cobra.Command{
		Use:           "sigos",
		Short:         "Signal aspect arbitration and execution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default $SIGOS_CONFIG or "+defaultConfigPath+")")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the signal controller",
		RunE:  serve,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "catalog",
		Short: "Build the rule catalog and print the supported rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalog(getConfigPath(configPath), cmd.OutOrStdout())
		},
	})

	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token <source>",
		Short: "Mint a bearer token for a remote requester",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(getConfigPath(configPath), args[0], ttl, cmd.OutOrStdout())
		},
	}
	tokenCmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "Token lifetime")
	cmd.AddCommand(tokenCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sigos %s (commit %s, built %s)\n", version, commit, date)
		},
	})

	return cmd
}

// getConfigPath returns the configuration file path.
// The --config flag wins, then SIGOS_CONFIG, then the default.
func getConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv("SIGOS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildCatalog loads the inventory and rule library named by cfg and
// compiles the catalog.
//
// Parameters:
//   - cfg: Application configuration
//   - log: Logger for the catalog builder
//   - sink: Receives rejection records; may be nil
//
// Returns:
//   - *fixture.Inventory: The mast's fixtures
//   - *rule.Catalog: Rules displayable on those fixtures
//   - error: If the inventory or library is invalid
func buildCatalog(cfg *config.Config, log *logging.Logger, sink rule.Sink) (*fixture.Inventory, *rule.Catalog, error) {
	inv, err := fixture.FromConfig(cfg.Signal)
	if err != nil {
		return nil, nil, fmt.Errorf("building fixture inventory: %w", err)
	}

	lib, err := rule.LoadLibrary(cfg.Signal.RulesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading rule library: %w", err)
	}

	builder := rule.NewBuilder(inv)
	builder.SetLogger(log.Component("catalog"))
	if sink != nil {
		builder.SetSink(sink)
	}
	catalog := builder.Build(lib)

	if _, err := catalog.Default(); err != nil {
		return nil, nil, fmt.Errorf("rule library %s: %w", cfg.Signal.RulesFile, err)
	}
	return inv, catalog, nil
}

// runCatalog prints the supported rules and every rejection.
func runCatalog(configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	inv, catalog, err := buildCatalog(cfg, logging.Discard(), nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "signal %s: %s\n", cfg.Signal.Hostname, inv)
	fmt.Fprintf(out, "rule set %q, default %s, %d supported\n", catalog.RuleSet(), catalog.DefaultID(), catalog.Len())
	for _, d := range catalog.List() {
		fmt.Fprintf(out, "  %-8s %-24s priority %-3d %s\n", d.ID, d.Name, d.Priority, d.Aspect)
	}
	if rej := catalog.Rejections(); len(rej) > 0 {
		fmt.Fprintf(out, "%d rejected:\n", len(rej))
		for _, r := range rej {
			fmt.Fprintf(out, "  %s\n", r)
		}
	}
	return nil
}

// runToken prints a bearer token for source signed with the configured secret.
func runToken(configPath, source string, ttl time.Duration, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Security.JWT.Secret == "" {
		return fmt.Errorf("security.jwt.secret is not set; the API accepts requests without tokens")
	}

	token, err := auth.GenerateToken(source, cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer, ttl)
	if err != nil {
		return fmt.Errorf("minting token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}
