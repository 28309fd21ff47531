// Package generator turns a user's content index into a persona by asking
// the configured language model.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/profiler/internal/content"
	"github.com/MikeSquared-Agency/profiler/internal/llm"
	"github.com/MikeSquared-Agency/profiler/internal/persona"
)

// ErrNoBackend is returned when no model backend is configured.
var ErrNoBackend = errors.New("no llm backend configured")

// GenerationError reports a failed persona generation. It is fatal for a run.
type GenerationError struct {
	Backend llm.Backend
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate persona with %s: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

type Generator struct {
	llm     llm.Completer
	backend llm.Backend
	logger  *slog.Logger
}

func New(c llm.Completer, backend llm.Backend, logger *slog.Logger) *Generator {
	return &Generator{llm: c, backend: backend, logger: logger}
}

// Backend reports which backend the generator calls.
func (g *Generator) Backend() llm.Backend { return g.backend }

// Generate summarises the index, asks the model for a persona and parses
// the reply. A reply that is not a JSON object is kept under the
// "analysis" category rather than failing the run.
func (g *Generator) Generate(ctx context.Context, idx content.Index) (persona.Persona, error) {
	if g.llm == nil || g.backend == llm.BackendNone {
		return persona.Persona{}, &GenerationError{Backend: g.backend, Err: ErrNoBackend}
	}

	summary := Summarize(idx)
	g.logger.Info("generating persona",
		"username", idx.User.Username,
		"backend", g.backend.String(),
		"items", len(idx.Items),
		"summary_len", len(summary),
	)

	raw, err := g.llm.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(personaUserPrompt, summary),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		JSON:        true,
	})
	if err != nil {
		return persona.Persona{}, &GenerationError{Backend: g.backend, Err: err}
	}

	p, malformed := persona.ParseReply(raw)
	if malformed {
		g.logger.Warn("model reply is not a JSON object, keeping raw analysis",
			"username", idx.User.Username,
			"backend", g.backend.String(),
			"reply_len", len(raw),
		)
	}

	g.logger.Info("persona generated",
		"username", idx.User.Username,
		"categories", p.Len(),
	)
	return p, nil
}

// Summarize builds the model input: a header with the account details,
// then the newest posts and comments, each truncated.
func Summarize(idx content.Index) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Username: %s\n", idx.User.Username)
	fmt.Fprintf(&b, "Account age: %s\n", accountAge(idx.User))
	fmt.Fprintf(&b, "Karma: %d link, %d comment\n\n", idx.User.LinkKarma, idx.User.CommentKarma)

	b.WriteString("Recent Posts:\n")
	for i, p := range idx.Posts() {
		if i >= summaryPosts {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s: %s...\n", p.Subreddit, p.Title, truncateRunes(p.Body, summaryPostLength))
	}

	b.WriteString("\nRecent Comments:\n")
	for i, c := range idx.Comments() {
		if i >= summaryComments {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s...\n", c.Subreddit, truncateRunes(c.Body, summaryCommentLength))
	}

	return b.String()
}

func accountAge(u content.UserMeta) string {
	if u.AccountCreated.IsZero() {
		return "unknown"
	}
	return u.AccountCreated.UTC().Format("2006-01-02 15:04:05")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
