package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/profiler/internal/content"
	"github.com/MikeSquared-Agency/profiler/internal/hermes"
	"github.com/MikeSquared-Agency/profiler/internal/llm"
	"github.com/MikeSquared-Agency/profiler/internal/persona"
	"github.com/MikeSquared-Agency/profiler/internal/store"
)

// Fetcher loads a user's public content.
type Fetcher interface {
	FetchUser(ctx context.Context, username string, maxPosts, maxComments int) (content.UserData, error)
}

// Generator produces a persona from a content index.
type Generator interface {
	Generate(ctx context.Context, idx content.Index) (persona.Persona, error)
	Backend() llm.Backend
}

// ReportWriter saves the rendered report.
type ReportWriter interface {
	Write(username string, cited persona.CitedPersona) (string, error)
	WriteTo(path, username string, cited persona.CitedPersona) (string, error)
}

// ReportStore persists finished reports.
type ReportStore interface {
	SaveReport(ctx context.Context, r *store.Report) error
}

// Publisher announces finished reports.
type Publisher interface {
	Publish(subject string, data any) error
}

// Limits bounds how much content is fetched per user.
type Limits struct {
	MaxPosts    int
	MaxComments int
}

// Processor runs the profiling pipeline: fetch, index, generate, cite,
// write, then optionally persist and announce.
type Processor struct {
	fetcher   Fetcher
	generator Generator
	writer    ReportWriter
	store     ReportStore
	hermes    Publisher
	limits    Limits
	progress  func(string)
	baseCtx   context.Context
	logger    *slog.Logger
}

type Option func(*Processor)

// WithBaseContext bounds runs started by event handlers, which have no
// caller context of their own. Cancelling ctx aborts in-flight runs.
func WithBaseContext(ctx context.Context) Option {
	return func(p *Processor) { p.baseCtx = ctx }
}

// WithStore persists every report.
func WithStore(s ReportStore) Option {
	return func(p *Processor) { p.store = s }
}

// WithPublisher announces every report on SubjectPersonaGenerated.
func WithPublisher(h Publisher) Option {
	return func(p *Processor) { p.hermes = h }
}

// WithProgress receives human-readable stage messages.
func WithProgress(fn func(string)) Option {
	return func(p *Processor) { p.progress = fn }
}

func New(f Fetcher, g Generator, w ReportWriter, limits Limits, logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		fetcher:   f,
		generator: g,
		writer:    w,
		limits:    limits,
		baseCtx:   context.Background(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunOptions tunes a single run.
type RunOptions struct {
	// OutputPath overrides the default report location.
	OutputPath string
	// RequestID correlates the run with the request that triggered it.
	RequestID string
}

// Result describes a finished run.
type Result struct {
	ReportID     uuid.UUID            `json:"id"`
	RequestID    string               `json:"request_id,omitempty"`
	Username     string               `json:"username"`
	PostCount    int                  `json:"post_count"`
	CommentCount int                  `json:"comment_count"`
	Backend      string               `json:"backend"`
	Persona      persona.CitedPersona `json:"persona"`
	ReportPath   string               `json:"report_path"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Run profiles one user. Fetch and generation failures are returned as
// is so callers can tell them apart with errors.As.
func (p *Processor) Run(ctx context.Context, username string, opts RunOptions) (*Result, error) {
	start := time.Now()
	p.logger.Info("processing user", "username", username, "request_id", opts.RequestID)

	p.report("Scraping data for user: %s...", username)
	data, err := p.fetcher.FetchUser(ctx, username, p.limits.MaxPosts, p.limits.MaxComments)
	if err != nil {
		return nil, err
	}
	p.report("Found %d posts and %d comments", len(data.Posts), len(data.Comments))

	idx := content.BuildIndex(data)

	p.report("Generating user persona...")
	generated, err := p.generator.Generate(ctx, idx)
	if err != nil {
		return nil, err
	}

	cited := persona.Cite(generated, idx)

	p.report("Saving persona to file...")
	// Reddit usernames are case-insensitive; the fetched spelling wins.
	name := idx.User.Username
	if name == "" {
		name = username
	}
	var path string
	if opts.OutputPath != "" {
		path, err = p.writer.WriteTo(opts.OutputPath, name, cited)
	} else {
		path, err = p.writer.Write(name, cited)
	}
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	res := &Result{
		ReportID:     uuid.New(),
		RequestID:    opts.RequestID,
		Username:     name,
		PostCount:    len(data.Posts),
		CommentCount: len(data.Comments),
		Backend:      p.generator.Backend().String(),
		Persona:      cited,
		ReportPath:   path,
		CreatedAt:    time.Now().UTC(),
	}

	if p.store != nil {
		err := p.store.SaveReport(ctx, &store.Report{
			ID:           res.ReportID,
			Username:     res.Username,
			User:         idx.User,
			PostCount:    res.PostCount,
			CommentCount: res.CommentCount,
			Backend:      res.Backend,
			Persona:      cited,
			CreatedAt:    res.CreatedAt,
		})
		if err != nil {
			p.logger.Error("failed to persist report", "username", name, "report_id", res.ReportID, "error", err)
		}
	}

	if p.hermes != nil {
		if err := p.hermes.Publish(hermes.SubjectPersonaGenerated, hermes.PersonaGenerated{
			ReportID:   res.ReportID.String(),
			RequestID:  res.RequestID,
			Username:   res.Username,
			Backend:    res.Backend,
			Categories: cited.Len(),
			Citations:  cited.CitationCount(),
			ReportPath: res.ReportPath,
		}); err != nil {
			p.logger.Error("failed to publish persona generated", "username", name, "error", err)
		}
	}

	p.logger.Info("user processed",
		"username", name,
		"report_id", res.ReportID,
		"categories", cited.Len(),
		"citations", cited.CitationCount(),
		"duration", time.Since(start),
	)
	return res, nil
}

func (p *Processor) report(format string, args ...any) {
	if p.progress != nil {
		p.progress(fmt.Sprintf(format, args...))
	}
}
