package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/windfall/vocal_service/internal/client"
)

// PostgresSessionRepository stores sessions in the practice_sessions table with analysis as JSONB.
type PostgresSessionRepository struct {
	db *client.PostgresClient
}

func NewPostgresSessionRepository(db *client.PostgresClient) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, session *Session) error {
	if r.db == nil || r.db.Pool == nil {
		return ErrNotConfigured
	}

	analysis, err := marshalAnalysis(session.Analysis)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO practice_sessions (
			kind, text, audio_duration, recorded_at, analysis
		) VALUES (
			$1, $2, $3, $4, $5
		) RETURNING id::text, created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		session.Kind,
		session.Text,
		session.AudioDuration,
		session.RecordedAt,
		analysis,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*Session, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, ErrNotConfigured
	}

	query := `
		SELECT id::text, kind, text, audio_duration, recorded_at, analysis, created_at, updated_at
		FROM practice_sessions
		WHERE id::text = $1
	`

	session, err := scanSession(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (r *PostgresSessionRepository) List(ctx context.Context, limit int) ([]*Session, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, ErrNotConfigured
	}

	query := `
		SELECT id::text, kind, text, audio_duration, recorded_at, analysis, created_at, updated_at
		FROM practice_sessions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

func (r *PostgresSessionRepository) UpdateAnalysis(ctx context.Context, id string, analysis map[string]interface{}) error {
	if r.db == nil || r.db.Pool == nil {
		return ErrNotConfigured
	}

	data, err := marshalAnalysis(analysis)
	if err != nil {
		return err
	}

	query := `UPDATE practice_sessions SET analysis = $1, updated_at = NOW() WHERE id::text = $2`
	tag, err := r.db.Pool.Exec(ctx, query, data, id)
	if err != nil {
		return fmt.Errorf("failed to update session analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSessionRepository) Backend() string {
	return "postgres"
}

func scanSession(row pgx.Row) (*Session, error) {
	var (
		session  Session
		analysis []byte
	)
	if err := row.Scan(
		&session.ID,
		&session.Kind,
		&session.Text,
		&session.AudioDuration,
		&session.RecordedAt,
		&analysis,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &session.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
	}
	return &session, nil
}

func marshalAnalysis(analysis map[string]interface{}) ([]byte, error) {
	if analysis == nil {
		return nil, nil
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	return data, nil
}
