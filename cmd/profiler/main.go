package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/profiler/internal/api"
	"github.com/MikeSquared-Agency/profiler/internal/config"
	"github.com/MikeSquared-Agency/profiler/internal/generator"
	"github.com/MikeSquared-Agency/profiler/internal/hermes"
	"github.com/MikeSquared-Agency/profiler/internal/llm"
	"github.com/MikeSquared-Agency/profiler/internal/processor"
	"github.com/MikeSquared-Agency/profiler/internal/reddit"
	"github.com/MikeSquared-Agency/profiler/internal/report"
	"github.com/MikeSquared-Agency/profiler/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "profiler [profile-url]",
	Short:         "Generate user personas from Reddit profiles",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runGenerate(cmd, args)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate <profile-url>",
	Short: "Fetch a profile, generate a cited persona and save the report",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and NATS worker",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	outputFlag      string
	backendFlag     string
	maxPostsFlag    int
	maxCommentsFlag int
)

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, generateCmd} {
		cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output filename (optional)")
		cmd.Flags().StringVar(&backendFlag, "backend", "", "LLM backend: gemini, groq, local, huggingface, anthropic")
		cmd.Flags().IntVar(&maxPostsFlag, "max-posts", 0, "Maximum posts to fetch (default from MAX_POSTS)")
		cmd.Flags().IntVar(&maxCommentsFlag, "max-comments", 0, "Maximum comments to fetch (default from MAX_COMMENTS)")
	}
	rootCmd.AddCommand(generateCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
}

// GenerateOptions carries the collaborators of a generate run so tests can
// swap them out.
type GenerateOptions struct {
	Output    string
	Fetcher   processor.Fetcher
	Generator processor.Generator
	Stdout    io.Writer
	Logger    *slog.Logger
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg := config.Load()
	if err := applyFlags(&cfg); err != nil {
		return err
	}
	logger := setupLogging(cfg.LogLevel, os.Stderr)

	opts := GenerateOptions{
		Output: outputFlag,
		Stdout: cmd.OutOrStdout(),
		Logger: logger,
	}
	return generate(cmd.Context(), cfg, args[0], opts)
}

func generate(ctx context.Context, cfg config.Config, profileURL string, opts GenerateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !reddit.ValidateProfileURL(profileURL) {
		return errors.New("invalid Reddit profile URL\nExpected format: https://www.reddit.com/user/kojied/")
	}

	fmt.Fprintln(out, "Extracting username from URL...")
	username, err := reddit.ExtractUsername(profileURL)
	if err != nil {
		return err
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = newRedditClient(cfg, logger)
	}
	gen := opts.Generator
	if gen == nil {
		g, err := generator.NewFromConfig(ctx, cfg, logger)
		if err != nil {
			return err
		}
		gen = g
	}

	proc := processor.New(fetcher, gen, report.NewWriter(cfg.OutputDir),
		processor.Limits{MaxPosts: cfg.MaxPosts, MaxComments: cfg.MaxComments},
		logger,
		processor.WithProgress(func(msg string) { fmt.Fprintln(out, msg) }),
	)

	res, err := proc.Run(ctx, username, processor.RunOptions{OutputPath: opts.Output})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nSuccess! User persona saved to: %s\n", res.ReportPath)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg := config.Load()
	logger := setupLogging(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("profiler starting", "port", cfg.Port, "backend", cfg.Backend.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := generator.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var (
		reports  api.ReportReader
		procOpts []processor.Option
	)

	// Database (optional: without it reports are only written to disk)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database connected")
		reports = db
		procOpts = append(procOpts, processor.WithStore(db))
	} else {
		logger.Warn("DATABASE_URL not set, reports are not persisted")
	}

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return err
		}
		defer hermesClient.Close()
		logger.Info("NATS connected", "url", cfg.NatsURL)
		procOpts = append(procOpts, processor.WithPublisher(hermesClient))
	} else {
		logger.Warn("NATS_URL not set, running without events")
	}

	proc := processor.New(newRedditClient(cfg, logger), gen, report.NewWriter(cfg.OutputDir),
		processor.Limits{MaxPosts: cfg.MaxPosts, MaxComments: cfg.MaxComments},
		logger, append(procOpts, processor.WithBaseContext(ctx))...)

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectPersonaRequested, proc.HandlePersonaRequested); err != nil {
			return err
		}
	}

	srv := api.NewServer(cfg.Port, cfg.APIToken, proc, reports, cfg.Backend.String(), logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("profiler ready", "port", cfg.Port)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", "error", err)
	}
	logger.Info("profiler stopped")
	return nil
}

// applyFlags lets command-line flags override the environment.
func applyFlags(cfg *config.Config) error {
	if backendFlag != "" {
		b, err := llm.ParseBackend(backendFlag)
		if err != nil {
			return err
		}
		cfg.Backend = b
		cfg.BackendError = nil
	}
	if maxPostsFlag > 0 {
		cfg.MaxPosts = maxPostsFlag
	}
	if maxCommentsFlag > 0 {
		cfg.MaxComments = maxCommentsFlag
	}
	return nil
}

func newRedditClient(cfg config.Config, logger *slog.Logger) *reddit.Client {
	return reddit.NewClient(reddit.Config{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		UserAgent:    cfg.RedditUserAgent,
		Parallel:     cfg.ParallelFetch,
	}, logger)
}

func setupLogging(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
