package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Service provides history management functionality.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Create creates a new history entry.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Entry, error) {
	var dataJSON sql.NullString
	if input.Data != nil {
		bytes, err := json.Marshal(input.Data)
		if err != nil {
			return nil, err
		}
		dataJSON = sql.NullString{String: string(bytes), Valid: true}
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO history (event_type, topic_id, title, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(input.EventType),
		nullString(input.TopicID),
		nullString(input.Title),
		dataJSON,
		now,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Entry{
		ID:        id,
		EventType: input.EventType,
		TopicID:   input.TopicID,
		Title:     input.Title,
		Data:      input.Data,
		CreatedAt: now,
	}, nil
}

// List lists history entries with pagination and filtering.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100
	}

	offset := (opts.Page - 1) * opts.PageSize

	where := ""
	args := []any{}
	if opts.EventType != "" {
		where = " WHERE event_type = ?"
		args = append(args, opts.EventType)
	}

	var totalCount int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history"+where, args...).Scan(&totalCount); err != nil {
		return nil, err
	}

	queryArgs := append(args, opts.PageSize, offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_type, topic_id, title, data, created_at FROM history"+where+
			" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		queryArgs...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*Entry, 0, opts.PageSize)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResponse{
		Entries:    entries,
		TotalCount: totalCount,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
	}, nil
}

// Prune deletes history entries older than the given age.
func (s *Service) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("Pruned old history entries")
	}
	return deleted, nil
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		entry     Entry
		eventType string
		topicID   sql.NullString
		title     sql.NullString
		data      sql.NullString
	)
	if err := rows.Scan(&entry.ID, &eventType, &topicID, &title, &data, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.EventType = EventType(eventType)
	entry.TopicID = topicID.String
	entry.Title = title.String
	if data.Valid && data.String != "" {
		// Best effort: a corrupt data blob should not break listing
		_ = json.Unmarshal([]byte(data.String), &entry.Data)
	}
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
