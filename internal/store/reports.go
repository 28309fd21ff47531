package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/profiler/internal/content"
	"github.com/MikeSquared-Agency/profiler/internal/persona"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

// Report is a stored persona run.
type Report struct {
	ID           uuid.UUID            `json:"id"`
	Username     string               `json:"username"`
	User         content.UserMeta     `json:"user"`
	PostCount    int                  `json:"post_count"`
	CommentCount int                  `json:"comment_count"`
	Backend      string               `json:"backend"`
	Persona      persona.CitedPersona `json:"persona"`
	CreatedAt    time.Time            `json:"created_at"`
}

const reportColumns = `id, username, account_created, link_karma, comment_karma, post_count, comment_count, backend, persona, created_at`

// SaveReport inserts a report, assigning an ID when it has none.
func (s *Store) SaveReport(ctx context.Context, r *Report) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	doc, err := json.Marshal(r.Persona)
	if err != nil {
		return fmt.Errorf("marshal persona: %w", err)
	}

	var created *time.Time
	if !r.User.AccountCreated.IsZero() {
		created = &r.User.AccountCreated
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO persona_reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.Username, created, r.User.LinkKarma, r.User.CommentKarma,
		r.PostCount, r.CommentCount, r.Backend, doc, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert persona report: %w", err)
	}
	return nil
}

// GetReport fetches a report by ID.
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM persona_reports WHERE id = $1`, id)
	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get persona report: %w", err)
	}
	return r, nil
}

// ListReports returns a user's reports, newest first.
func (s *Store) ListReports(ctx context.Context, username string, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+reportColumns+` FROM persona_reports
		WHERE lower(username) = $1
		ORDER BY created_at DESC
		LIMIT $2`, strings.ToLower(username), limit)
	if err != nil {
		return nil, fmt.Errorf("list persona reports: %w", err)
	}
	defer rows.Close()

	reports := []Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan persona report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*Report, error) {
	var (
		r       Report
		created *time.Time
		doc     []byte
	)
	err := row.Scan(&r.ID, &r.Username, &created, &r.User.LinkKarma, &r.User.CommentKarma,
		&r.PostCount, &r.CommentCount, &r.Backend, &doc, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.User.Username = r.Username
	if created != nil {
		r.User.AccountCreated = created.UTC()
	}
	if err := json.Unmarshal(doc, &r.Persona); err != nil {
		return nil, fmt.Errorf("decode persona: %w", err)
	}
	return &r, nil
}
