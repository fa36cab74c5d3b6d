package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"coursekit/internal/model"

	"github.com/google/uuid"
)

type CourseSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject,omitempty"`
	Class     string    `json:"class,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveCourse creates (courseID == "") or updates a course from its serialized payload.
// On create the new id is returned in SaveResult.ID.
func (s Store) SaveCourse(ctx context.Context, courseID string, p Payload) (SaveResult, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	defer db.Close()

	id := strings.TrimSpace(courseID)
	if id == "" {
		id = uuid.NewString()
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return SaveResult{}, err
	}
	nowMs := time.Now().UTC().UnixMilli()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return SaveResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO courses(id, name, subject, class, json, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			subject = excluded.subject,
			class = excluded.class,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		id, p.CourseName, p.Subject, p.Class, string(raw), nowMs, nowMs,
	); err != nil {
		return SaveResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Success: true, ID: id}, nil
}

// LoadCourse returns the decoded (not yet migrated) course.
func (s Store) LoadCourse(ctx context.Context, id string) (*model.Course, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var js string
	err = db.QueryRowContext(ctx, `SELECT json FROM courses WHERE id = ?`, strings.TrimSpace(id)).Scan(&js)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	c, err := DecodeCourse([]byte(js))
	if err != nil {
		return nil, err
	}
	c.ID = strings.TrimSpace(id)
	return c, nil
}

func (s Store) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, name, subject, class, created_at_unixms, updated_at_unixms
		FROM courses ORDER BY updated_at_unixms DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CourseSummary{}
	for rows.Next() {
		var cs CourseSummary
		var created, updated int64
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Subject, &cs.Class, &created, &updated); err != nil {
			return nil, err
		}
		cs.CreatedAt = time.UnixMilli(created).UTC()
		cs.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s Store) DeleteCourse(ctx context.Context, id string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS courses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			subject TEXT NOT NULL,
			class TEXT NOT NULL,
			json TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_courses_updated ON courses(updated_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}
