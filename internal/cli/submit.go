package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Delyplott/DelyPlot-Web/internal/apiclient"
	"github.com/Delyplott/DelyPlot-Web/internal/bridge"
	"github.com/Delyplott/DelyPlot-Web/internal/config"
	"github.com/Delyplott/DelyPlot-Web/internal/format"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/session"
	"github.com/Delyplott/DelyPlot-Web/internal/staging"
	"github.com/Delyplott/DelyPlot-Web/internal/uploader"
)

type SubmitOptions struct {
	Form     models.OrderForm
	Files    []string
	Strategy string
	Follow   bool
	Notify   bool
}

func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a print order",
		Long: `Submit a print order.

Signs in anonymously, gets the files uploaded with the configured strategy,
saves the order and, with --follow, waits until it is quoted or fails.

Strategies: handshake and poll / poll-jsonp open the uploader page in a
browser; bridge uploads the --file paths directly.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runSubmit(ctx, rootOpts, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Form.Customer.Name, "name", "", "customer name")
	f.StringVar(&opts.Form.Customer.Phone, "phone", "", "customer phone")
	f.StringVar(&opts.Form.Customer.Email, "email", "", "customer email")
	f.StringVar(&opts.Form.Options.Size, "size", "", "print size")
	f.StringVar(&opts.Form.Options.Color, "color", "Blanco y negro", "color mode (Blanco y negro|Color)")
	f.StringVar(&opts.Form.Options.Delivery, "delivery", "Retiro en local", "delivery (Retiro en local|Delivery)")
	f.StringVar(&opts.Form.Notes, "notes", "", "notes for the shop")
	f.StringArrayVar(&opts.Files, "file", nil, "file to upload (bridge strategy, repeatable)")
	f.StringVar(&opts.Strategy, "strategy", "", "upload strategy (handshake|poll|poll-jsonp|bridge)")
	f.BoolVar(&opts.Follow, "follow", false, "wait for the quote")
	f.BoolVar(&opts.Notify, "notify", false, "send order_saved to the uploader after saving")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runSubmit(ctx context.Context, rootOpts *RootOptions, opts *SubmitOptions, in io.Reader, out io.Writer) error {
	logger := rootOpts.newLogger()
	defer logger.Sync()

	cfg, err := config.LoadClient(rootOpts.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load client profile", err)
	}
	if opts.Strategy != "" {
		cfg.UploadStrategy = opts.Strategy
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	endpoint, err := bridge.ParseBaseURL(cfg.AppsScriptURL)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid bridge endpoint", err)
	}
	bridgeClient := bridge.NewClient(endpoint, "")
	api := apiclient.NewClient(cfg.APIURL)
	renderer := session.NewTerminalRenderer(out)

	sessOpts := session.Options{
		API:      api,
		Feed:     api,
		Renderer: renderer,
		Logger:   logger,
		Stager:   staging.NewStager(cfg.MaxFileSize),
	}
	if opts.Notify {
		sessOpts.Notifier = bridgeClient
	}

	cleanup, err := configureUpload(ctx, cfg, endpoint, bridgeClient, &sessOpts, in, out, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.UploadStrategy == config.StrategyBridge {
		if err := stageFiles(sessOpts.Stager, opts.Files, out); err != nil {
			return err
		}
	}

	sess, err := session.New(sessOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start session", err)
	}
	defer sess.Close()

	order, err := sess.Submit(ctx, opts.Form)
	if err != nil {
		return WrapExitError(ExitFailure, "order failed", err)
	}
	fmt.Fprintf(out, "Order id: %s\n", order.ID)

	if !opts.Follow {
		return nil
	}
	if _, err := sess.Follow(ctx); err != nil {
		if IsOrderFailure(err) {
			return WrapExitError(ExitFailure, "order failed", err)
		}
		return WrapExitError(ExitFailure, "stopped following the order", err)
	}
	return nil
}

// configureUpload picks the upload flow for the strategy. The returned func
// releases whatever the strategy started.
func configureUpload(ctx context.Context, cfg *config.ClientConfig, endpoint bridge.Endpoint, bridgeClient *bridge.Client, sessOpts *session.Options, in io.Reader, out io.Writer, logger *zap.SugaredLogger) (func(), error) {
	launcher := uploader.NewBrowserLauncher(out, in)
	noop := func() {}

	switch cfg.UploadStrategy {
	case config.StrategyHandshake:
		server := uploader.NewMessageServer(cfg.AllowedOrigins, logger)
		if err := server.Start(cfg.HandshakeListen); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to start the handshake listener", err)
		}
		fmt.Fprintf(out, "Waiting for the uploader to post to http://%s/messages\n", cfg.HandshakeListen)
		sessOpts.Acquirer = uploader.NewHandshake(launcher, endpoint, server, uploader.HandshakeOptions{
			AllowedOrigins: cfg.AllowedOrigins,
		}, logger)
		return func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warnw("handshake listener shutdown failed", "error", err)
			}
		}, nil
	case config.StrategyPoll:
		sessOpts.Acquirer = uploader.NewPoller(launcher, endpoint, bridgeClient.FetchResult, uploader.DefaultPollOptions(), logger)
	case config.StrategyPollJSONP:
		sessOpts.Acquirer = uploader.NewPoller(launcher, endpoint, bridgeClient.FetchResultJSONP, uploader.DefaultPollOptions(), logger)
	case config.StrategyBridge:
		sessOpts.Inline = uploader.NewBridgeUploader(bridgeClient)
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown upload strategy %q", cfg.UploadStrategy))
	}
	return noop, nil
}

func stageFiles(stager *staging.Stager, paths []string, out io.Writer) error {
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, "the bridge strategy needs at least one --file")
	}
	files, err := staging.FromPaths(paths...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read files", err)
	}
	if rejected := stager.Add(files...); len(rejected) > 0 {
		fmt.Fprintf(out, "Skipped (larger than %s): %s\n", format.Bytes(stager.MaxSize()), strings.Join(rejected, ", "))
	}
	if stager.Len() == 0 {
		return NewExitError(ExitCommandError, "no file is within the size limit")
	}
	for _, f := range stager.Files() {
		fmt.Fprintf(out, "Staged %s (%s)\n", f.Name, format.Bytes(f.Size))
	}
	return nil
}

// IsOrderFailure reports whether err is a worker-reported failure.
func IsOrderFailure(err error) bool {
	var failed *session.OrderFailedError
	return errors.As(err, &failed)
}
