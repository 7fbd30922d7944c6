// Package cli implements the medal-api command line: the long-running HTTP
// server and a one-shot processing command for operators.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corylsmithjr/medal-api/internal/app"
	"github.com/corylsmithjr/medal-api/internal/errs"
	"github.com/corylsmithjr/medal-api/internal/handler"
	"github.com/corylsmithjr/medal-api/internal/lib/utils"
	"github.com/corylsmithjr/medal-api/internal/service"
	"github.com/corylsmithjr/medal-api/internal/validation"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ShutdownTimeout bounds the graceful drain of in-flight requests.
const ShutdownTimeout = 30 * time.Second

var imageURL string

var rootCmd = &cobra.Command{
	Use:   "medal-api",
	Short: "Medal background removal API",
	Long: `medal-api forwards a medal photo URL to the OpenAI image edit API and
returns the URL of the background-free image.

Configuration is read from MEDAL_* environment variables (and .env).`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Processes one medal image and prints the JSON result",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New()
		if err != nil {
			return err
		}
		defer a.Server.LoggerService.Shutdown()

		return process(cmd.Context(), a.Services.Medal, imageURL, cmd.OutOrStdout())
	},
}

func init() {
	processCmd.Flags().StringVarP(&imageURL, "image-url", "i", "", "URL of the medal photo")
	_ = processCmd.MarkFlagRequired("image-url")

	rootCmd.AddCommand(serveCmd, processCmd)
}

// Init executes the root command and exits with status 1 on failure.
func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	a, err := app.New()
	if err != nil {
		return err
	}

	a.Server.SetupHTTPServer(a.Router)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Server.Start()
	}()

	select {
	case err := <-serverErr:
		a.Server.LoggerService.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}

	a.Logger.Info().Msg("server exited properly")
	return nil
}

// processor is the part of the medal service the process command needs.
type processor interface {
	ProcessMedal(ctx context.Context, imageURL string) (string, error)
}

// process runs one invocation and writes the same JSON body the HTTP
// endpoint would return. The error is returned after the body is written.
func process(ctx context.Context, p processor, imageURL string, out io.Writer) error {
	req := &handler.ProcessMedalRequest{ImageURL: imageURL}
	if err := validation.Check(req); err != nil {
		return printError(out, err)
	}

	finalURL, err := p.ProcessMedal(ctx, imageURL)
	if err != nil {
		return printError(out, err)
	}

	return utils.PrintJSON(out, handler.ProcessMedalResponse{
		Success:  true,
		Message:  service.MsgMedalProcessed,
		ImageURL: finalURL,
	})
}

func printError(out io.Writer, err error) error {
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = errs.ServerError(err)
	}

	if printErr := utils.PrintJSON(out, httpErr); printErr != nil {
		return printErr
	}
	return fmt.Errorf("processing failed with status %d", httpErr.Status)
}
