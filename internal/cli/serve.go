// internal/cli/serve.go
package redqueen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mwiater/redqueen/internal/agent"
	"github.com/mwiater/redqueen/internal/appconfig"
	"github.com/mwiater/redqueen/internal/telemetry"
)

var serveOpts struct {
	addr    string
	timeout time.Duration
	maxSize int
}

// serveCmd runs the benchmark agent until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the benchmark agent",
	Long: `Serve benchmark requests over HTTP so "redqueen run --remote" on another
machine can measure on this one. Requests are measured one at a time with the
fixture settings of the loaded config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", serveOpts.addr)
		if err != nil {
			return fmt.Errorf("unable to listen on %s: %w", serveOpts.addr, err)
		}
		return serveAgent(ctx, ln, config(), serveOpts.timeout, serveOpts.maxSize, cmd.OutOrStdout())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", "127.0.0.1:8089", "address to listen on")
	serveCmd.Flags().DurationVar(&serveOpts.timeout, "timeout", agent.DefaultTimeout, "time limit of one benchmark request")
	serveCmd.Flags().IntVar(&serveOpts.maxSize, "max-size", agent.DefaultMaxSize, "largest generated input size a request may ask for")
	rootCmd.AddCommand(serveCmd)
}

// serveAgent serves the agent on ln until ctx is done, then shuts it down.
func serveAgent(ctx context.Context, ln net.Listener, cfg *appconfig.Config, timeout time.Duration, maxSize int, out io.Writer) error {
	fx, err := cfg.FixtureSettings()
	if err != nil {
		return err
	}

	server := agent.NewServer(agent.Config{Timeout: timeout, MaxSize: maxSize, Fixture: fx}, telemetry.NewMetrics(), logrus.StandardLogger())
	srv := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	fmt.Fprintf(out, "Benchmark agent listening on %s\n", ln.Addr())
	logrus.WithField("addr", ln.Addr().String()).Info("benchmark agent started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("agent shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logrus.Info("benchmark agent stopped")
	return nil
}
