// Command mailcheck exercises the configured email transport outside the
// HTTP server: verify connectivity, or send a single message.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/laxmielectronics/site-api/config"
	"github.com/laxmielectronics/site-api/internal/mailer"
	"github.com/laxmielectronics/site-api/pkg/logger"
)

var verbose bool

// transportFactory is replaced in tests
var transportFactory = func(ctx context.Context, cfg *config.Config) (mailer.Transport, error) {
	return mailer.New(ctx, cfg)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mailcheck",
		Short: "Check and exercise the site's email transport",
		Long: `mailcheck loads the same environment as the API server (EMAIL_PROVIDER,
SMTP_*, SES_*) and talks to the configured provider directly.

  mailcheck verify
  mailcheck send --to ops@example.com --subject "Relay test" --html "<p>hello</p>"`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newVerifyCmd())
	root.AddCommand(newSendCmd())
	return root
}

// loadTransport reads configuration and builds the transport
func loadTransport(ctx context.Context) (mailer.Transport, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.Initialize(logger.Config{
		Level:       level,
		Environment: "development",
		ServiceName: "laxmi-mailcheck",
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return transportFactory(ctx, cfg)
}
