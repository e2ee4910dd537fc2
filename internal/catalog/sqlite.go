package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"arforge/internal/config"
)

// SQLiteStore manages model persistence backed by SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// Open initializes or connects to the catalog database and applies migrations.
func Open(cfg *config.Config) (*SQLiteStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateModel inserts a model record in the uploading state.
func (s *SQLiteStore) CreateModel(ctx context.Context, id, name string) (*Model, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("model id required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO models (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		nullableString(name),
		ModelUploading,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert model: %w", err)
	}
	return s.GetModel(ctx, id)
}

// GetModel fetches a model by identifier. A missing model returns nil, nil.
func (s *SQLiteStore) GetModel(ctx context.Context, id string) (*Model, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE id = ?`, id)
	model, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get model: %w", err)
	}
	return model, nil
}

// ListModels returns all models ordered by creation time.
func (s *SQLiteStore) ListModels(ctx context.Context) ([]*Model, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+modelColumns+` FROM models ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, rows.Err()
}

// UpdateModel applies a partial update, touching only the provided fields.
func (s *SQLiteStore) UpdateModel(ctx context.Context, id string, fields Fields) error {
	assignments := make([]string, 0, 9)
	args := make([]any, 0, 10)

	appendField := func(column string, value any) {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}

	if fields.Status != nil {
		appendField("status", string(*fields.Status))
	}
	if fields.ProcessingLogs != nil {
		appendField("processing_logs", nullableString(*fields.ProcessingLogs))
	}
	if fields.GLBFileURL != nil {
		appendField("glb_file_url", nullableString(*fields.GLBFileURL))
	}
	if fields.USDZFileURL != nil {
		appendField("usdz_file_url", nullableString(*fields.USDZFileURL))
	}
	if fields.ThumbnailURL != nil {
		appendField("thumbnail_url", nullableString(*fields.ThumbnailURL))
	}
	if fields.ShortLink != nil {
		appendField("short_link", nullableString(*fields.ShortLink))
	}
	if fields.QRCodeURL != nil {
		appendField("qr_code_url", nullableString(*fields.QRCodeURL))
	}
	if fields.MetadataJSON != nil {
		appendField("metadata_json", nullableString(*fields.MetadataJSON))
	}
	if len(assignments) == 0 {
		return nil
	}
	appendField("updated_at", time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, id)

	query := `UPDATE models SET ` + strings.Join(assignments, ", ") + ` WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update model: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("model %s not found", id)
	}
	return nil
}

// ShortLinkExists reports whether any model already claims the short link.
func (s *SQLiteStore) ShortLinkExists(ctx context.Context, link string) (bool, error) {
	if strings.TrimSpace(link) == "" {
		return false, nil
	}
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM models WHERE short_link = ?`, link)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check short link: %w", err)
	}
	return count > 0, nil
}

const modelColumns = "id, name, status, processing_logs, glb_file_url, usdz_file_url, thumbnail_url, short_link, qr_code_url, metadata_json, created_at, updated_at"

func scanModel(scanner interface{ Scan(dest ...any) error }) (*Model, error) {
	var (
		id         string
		name       sql.NullString
		statusStr  string
		logs       sql.NullString
		glbURL     sql.NullString
		usdzURL    sql.NullString
		thumbURL   sql.NullString
		shortLink  sql.NullString
		qrURL      sql.NullString
		metadata   sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&name,
		&statusStr,
		&logs,
		&glbURL,
		&usdzURL,
		&thumbURL,
		&shortLink,
		&qrURL,
		&metadata,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	model := &Model{
		ID:             id,
		Name:           name.String,
		Status:         ModelStatus(statusStr),
		ProcessingLogs: logs.String,
		GLBFileURL:     glbURL.String,
		USDZFileURL:    usdzURL.String,
		ThumbnailURL:   thumbURL.String,
		ShortLink:      shortLink.String,
		QRCodeURL:      qrURL.String,
		MetadataJSON:   metadata.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		model.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		model.UpdatedAt = updated
	}
	return model, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
