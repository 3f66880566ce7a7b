package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cenkalti/backoff/v4"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/shopchat/pkg/config"
	"github.com/go-go-golems/shopchat/pkg/conversation"
	"github.com/go-go-golems/shopchat/pkg/pushchannel"
	"github.com/go-go-golems/shopchat/pkg/session"
	"github.com/go-go-golems/shopchat/pkg/transport"
	"github.com/go-go-golems/shopchat/pkg/ui"
)

func main() {
	var (
		apiURL   string
		wsURL    string
		logLevel string
		envFile  string
	)

	rootCmd := &cobra.Command{
		Use:   "shopchat",
		Short: "Terminal client for the AI shopping assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger(logLevel)
			if err != nil {
				return err
			}
			if err := config.LoadEnvFile(envFile); err != nil {
				return errors.Wrap(err, "load env file")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.APIBaseURL = apiURL
			}
			if wsURL != "" {
				cfg.WSBaseURL = wsURL
			}
			return run(cmd.Context(), cfg, logger)
		},
	}

	rootCmd.Flags().StringVar(&apiURL, "api-url", "", "request/reply transport base URL (overrides env)")
	rootCmd.Flags().StringVar(&wsURL, "ws-url", "", "push channel base URL (overrides env)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (trace|debug|info|warn|error)")
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env if present)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	client, err := transport.New(cfg.APIBaseURL,
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithLogger(logger.With().Str("component", "transport").Logger()),
	)
	if err != nil {
		return err
	}

	coord := session.NewCoordinator(client, logger)
	conv := conversation.New(client, coord,
		conversation.WithLogger(logger.With().Str("component", "conversation").Logger()),
	)

	g, ctx := errgroup.WithContext(ctx)

	// Session creation and push channel run alongside the UI; a failed session
	// leaves the UI usable but every submit rejected.
	g.Go(func() error {
		if err := coord.Start(ctx); err != nil {
			conv.Refresh()
			return nil
		}
		conv.Refresh()

		sessionID, ok := coord.SessionID()
		if !ok {
			return nil
		}
		channel := pushchannel.New(cfg.WSBaseURL, sessionID,
			pushchannel.WithBackoff(backoff.NewConstantBackOff(cfg.ReconnectDelay)),
			pushchannel.WithLogger(logger.With().Str("component", "pushchannel").Logger()),
		)
		if err := channel.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("push channel failed to start")
			return nil
		}
		defer channel.Close()

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-channel.Events():
				conv.ObserveConnection(ev)
			}
		}
	})

	g.Go(func() error {
		program := tea.NewProgram(
			ui.NewModel(ctx, conv, logger),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		)
		_, err := program.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return errors.Wrap(err, "run UI")
		}
		// cancels the errgroup context so the push pump winds down
		return errUIExited
	})

	err = g.Wait()
	if errors.Is(err, errUIExited) {
		return nil
	}
	return err
}

var errUIExited = errors.New("ui exited")

func buildLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, errors.Wrapf(err, "invalid log level %q", level)
	}
	var w = os.Stderr
	logger := zerolog.New(w)
	if isatty.IsTerminal(w.Fd()) {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w})
	}
	return logger.Level(lvl).With().Timestamp().Logger(), nil
}
