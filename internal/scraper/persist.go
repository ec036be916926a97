package scraper

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"bangumi/pkg/models"
)

// CalendarFile is the artifact name of the broadcast calendar.
const CalendarFile = "calendar.json"

// ArtifactWriter persists build outputs.
type ArtifactWriter interface {
	WriteCollection(key string, artifact models.CollectionArtifact) (string, error)
	WriteCalendar(days []models.CalendarDay) (string, error)
}

// DirWriter writes artifacts as JSON files under Dir. Each file is replaced
// atomically; a set of files is not.
type DirWriter struct {
	Dir string
}

// CollectionFile is the artifact name of a category.
func CollectionFile(key string) string {
	return key + ".json"
}

func (w DirWriter) WriteCollection(key string, artifact models.CollectionArtifact) (string, error) {
	return w.write(CollectionFile(key), artifact)
}

func (w DirWriter) WriteCalendar(days []models.CalendarDay) (string, error) {
	if days == nil {
		days = []models.CalendarDay{}
	}
	return w.write(CalendarFile, days)
}

func (w DirWriter) write(name string, v any) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(w.Dir, name)
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// CatalogRecord is one subject as stored in the catalog.
type CatalogRecord struct {
	Subject models.Subject
	Source  Source
}

// Catalog keeps the latest known metadata of every reconciled subject.
type Catalog struct {
	DB *sql.DB
}

// NewCatalog wraps db. The schema must already be migrated.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{DB: db}
}

// SaveSubjects upserts records in one transaction. A row that came from the
// mirror is never replaced by an embedded copy.
func (c *Catalog) SaveSubjects(ctx context.Context, records []CatalogRecord) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO subjects (id, type, name, name_cn, summary, total_episodes, eps, images, date, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		  type = excluded.type,
		  name = excluded.name,
		  name_cn = excluded.name_cn,
		  summary = excluded.summary,
		  total_episodes = excluded.total_episodes,
		  eps = excluded.eps,
		  images = excluded.images,
		  date = excluded.date,
		  source = excluded.source,
		  updated_at = CURRENT_TIMESTAMP
		WHERE excluded.source = 'mirror' OR subjects.source <> 'mirror'
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var images sql.NullString
		if r.Subject.Images != nil {
			b, err := json.Marshal(r.Subject.Images)
			if err != nil {
				return fmt.Errorf("marshal images for %d: %w", r.Subject.ID, err)
			}
			images = sql.NullString{String: string(b), Valid: true}
		}

		if _, err := stmt.ExecContext(
			ctx,
			r.Subject.ID,
			r.Subject.Type,
			r.Subject.Name,
			r.Subject.NameCN,
			r.Subject.Synopsis(),
			r.Subject.TotalEpisodes,
			r.Subject.Eps,
			images,
			r.Subject.Date,
			string(r.Source),
		); err != nil {
			return fmt.Errorf("exec upsert for %d: %w", r.Subject.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListSubjects returns catalog records ordered by id. limit <= 0 means all.
func (c *Catalog) ListSubjects(ctx context.Context, limit int) ([]CatalogRecord, error) {
	query := `
		SELECT id, type, name, name_cn, summary, total_episodes, eps, images, date, source
		FROM subjects
		ORDER BY id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var out []CatalogRecord
	for rows.Next() {
		var (
			r      CatalogRecord
			images sql.NullString
			source string
		)
		if err := rows.Scan(
			&r.Subject.ID, &r.Subject.Type, &r.Subject.Name, &r.Subject.NameCN, &r.Subject.Summary,
			&r.Subject.TotalEpisodes, &r.Subject.Eps, &images, &r.Subject.Date, &source,
		); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		if images.Valid && images.String != "" {
			r.Subject.Images = &models.Images{}
			if err := json.Unmarshal([]byte(images.String), r.Subject.Images); err != nil {
				return nil, fmt.Errorf("decode images for %d: %w", r.Subject.ID, err)
			}
		}
		r.Source = Source(source)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
