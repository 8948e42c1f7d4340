package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/netforge-io/netforge/internal/common/logtrace"
	"github.com/netforge-io/netforge/internal/testserver"
)

var (
	// Demo command flags
	demoListen     string
	demoConfigFile string
)

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo [flags]",
	Short: "Run a local in-memory demo server",
	Long: `Run a local in-memory NetBox-compatible server to try the CLI against.
The server accepts any endpoint, assigns ids, and answers the same envelopes
a real server would. State lives in memory and is lost on exit.

A TOML file can seed objects, fix the API token, and change the listen
address; without one the server starts empty with a generated token.

Examples:
  # Start the demo server on the default port
  netforge demo

  # Start on a custom address
  netforge demo --listen :9000

  # Start from a TOML file with seeded objects
  netforge demo --demo-config demo.toml`,
	RunE: runDemo,
}

// runDemo starts the demo server and blocks until interrupted
func runDemo(cmd *cobra.Command, args []string) error {
	logtrace.InitConsoleLogger()

	var cfg *testserver.Config
	var err error
	if demoConfigFile != "" {
		cfg, err = testserver.LoadConfig(demoConfigFile)
		if err != nil {
			return err
		}
	} else {
		cfg = testserver.DefaultConfig()
	}
	if demoListen != "" {
		cfg.Listen = demoListen
	}

	s, err := testserver.New(cfg)
	if err != nil {
		return err
	}
	s.MountHandlers()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	host := cfg.Listen
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	fmt.Printf("Demo server listening on http://%s\n", host)
	fmt.Printf("API token: %s\n\n", s.Token())
	fmt.Println("Point the CLI at it with:")
	fmt.Printf("  netforge config set-server http://%s\n", host)
	fmt.Printf("  netforge config set-token %s\n\n", s.Token())

	serverErrors := make(chan error, 1)

	// Start the service listening for requests.
	go func() {
		log.Info().Str("listen", cfg.Listen).Msg("demo server started")
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		// Give outstanding requests 5 seconds to complete and initiate the shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("could not stop server gracefully")
			if err := srv.Close(); err != nil {
				log.Error().Err(err).Msg("could not stop server")
			}
		}
	}

	log.Info().Msg("server stopped")
	return nil
}

// init initializes the demo command with its flags and adds it to the root command
func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoListen, "listen", "", "Listen address, overriding the configuration")
	demoCmd.Flags().StringVar(&demoConfigFile, "demo-config", "", "Path to a TOML file with seed data and server settings")
}
