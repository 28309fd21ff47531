package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/profiler/internal/config"
	"github.com/MikeSquared-Agency/profiler/internal/content"
	"github.com/MikeSquared-Agency/profiler/internal/generator"
	"github.com/MikeSquared-Agency/profiler/internal/llm"
	"github.com/MikeSquared-Agency/profiler/internal/persona"
	"github.com/MikeSquared-Agency/profiler/internal/reddit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFetcher struct {
	data    content.UserData
	err     error
	gotUser string
}

func (s *stubFetcher) FetchUser(_ context.Context, username string, _, _ int) (content.UserData, error) {
	s.gotUser = username
	return s.data, s.err
}

type stubGenerator struct {
	err error
}

func (s *stubGenerator) Generate(context.Context, content.Index) (persona.Persona, error) {
	if s.err != nil {
		return persona.Persona{}, s.err
	}
	var p persona.Persona
	p.Set("interests", persona.Text("rust"))
	return p, nil
}

func (s *stubGenerator) Backend() llm.Backend { return llm.BackendLocal }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{OutputDir: t.TempDir(), MaxPosts: 5, MaxComments: 5}
}

func TestGenerate_Success(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &stubFetcher{data: content.UserData{
		Username: "kojied",
		Posts:    []content.PostRecord{{ID: "p1", Title: "Rust question", URL: "https://reddit.com/p1"}},
	}}
	var out bytes.Buffer

	err := generate(context.Background(), cfg, "https://www.reddit.com/user/kojied/", GenerateOptions{
		Fetcher:   fetcher,
		Generator: &stubGenerator{},
		Stdout:    &out,
		Logger:    discardLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fetcher.gotUser != "kojied" {
		t.Errorf("expected username kojied, got %q", fetcher.gotUser)
	}

	path := filepath.Join(cfg.OutputDir, "kojied_persona.txt")
	want := "Extracting username from URL...\n" +
		"Scraping data for user: kojied...\n" +
		"Found 1 posts and 0 comments\n" +
		"Generating user persona...\n" +
		"Saving persona to file...\n" +
		"\nSuccess! User persona saved to: " + path + "\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "  - post: Rust question...") {
		t.Errorf("expected post citation in report, got %q", data)
	}
}

func TestGenerate_OutputOverride(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "mine.txt")

	err := generate(context.Background(), cfg, "https://reddit.com/u/kojied", GenerateOptions{
		Output:    path,
		Fetcher:   &stubFetcher{data: content.UserData{Username: "kojied"}},
		Generator: &stubGenerator{},
		Stdout:    io.Discard,
		Logger:    discardLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected report at %s: %v", path, err)
	}
}

func TestGenerate_InvalidURL(t *testing.T) {
	fetcher := &stubFetcher{}
	err := generate(context.Background(), testConfig(t), "https://example.com/kojied", GenerateOptions{
		Fetcher:   fetcher,
		Generator: &stubGenerator{},
		Stdout:    io.Discard,
		Logger:    discardLogger(),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid Reddit profile URL") {
		t.Fatalf("expected invalid url error, got %v", err)
	}
	if fetcher.gotUser != "" {
		t.Error("expected no fetch")
	}
}

func TestGenerate_PropagatesFatalErrors(t *testing.T) {
	fetchErr := &reddit.FetchError{Username: "kojied", Op: "about", Err: reddit.ErrUserNotFound}
	err := generate(context.Background(), testConfig(t), "https://reddit.com/user/kojied", GenerateOptions{
		Fetcher:   &stubFetcher{err: fetchErr},
		Generator: &stubGenerator{},
		Stdout:    io.Discard,
		Logger:    discardLogger(),
	})
	var fe *reddit.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("expected FetchError, got %v", err)
	}

	genErr := &generator.GenerationError{Backend: llm.BackendLocal, Err: errors.New("model offline")}
	err = generate(context.Background(), testConfig(t), "https://reddit.com/user/kojied", GenerateOptions{
		Fetcher:   &stubFetcher{data: content.UserData{Username: "kojied"}},
		Generator: &stubGenerator{err: genErr},
		Stdout:    io.Discard,
		Logger:    discardLogger(),
	})
	var ge *generator.GenerationError
	if !errors.As(err, &ge) {
		t.Errorf("expected GenerationError, got %v", err)
	}
}

func TestGenerate_NoBackendConfigured(t *testing.T) {
	err := generate(context.Background(), testConfig(t), "https://reddit.com/user/kojied", GenerateOptions{
		Fetcher: &stubFetcher{data: content.UserData{Username: "kojied"}},
		Stdout:  io.Discard,
		Logger:  discardLogger(),
	})
	if !errors.Is(err, generator.ErrNoBackend) {
		t.Errorf("expected ErrNoBackend, got %v", err)
	}
}

func TestApplyFlags(t *testing.T) {
	t.Cleanup(func() { backendFlag, maxPostsFlag, maxCommentsFlag = "", 0, 0 })

	backendFlag, maxPostsFlag, maxCommentsFlag = "groq", 7, 9
	cfg := config.Config{Backend: llm.BackendNone, BackendError: errors.New("bad env"), MaxPosts: 50, MaxComments: 100}
	if err := applyFlags(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != llm.BackendGroq || cfg.BackendError != nil {
		t.Errorf("expected groq backend override, got %s %v", cfg.Backend, cfg.BackendError)
	}
	if cfg.MaxPosts != 7 || cfg.MaxComments != 9 {
		t.Errorf("unexpected limits %d %d", cfg.MaxPosts, cfg.MaxComments)
	}

	backendFlag = "gpt"
	if err := applyFlags(&cfg); err == nil {
		t.Error("expected unknown backend error")
	}
}

func TestSetupLogging_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogging("warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("expected info suppressed at warn level")
	}
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("expected JSON warn line, got %q", buf.String())
	}
}
