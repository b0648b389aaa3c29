package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Report is an archived analysis report.
type Report struct {
	ID         string
	Country    string
	City       string
	Age        int
	FrameCount int
	Text       string
	Thumbnail  []byte
	PDF        []byte
	CreatedAt  time.Time
}

// ReportSummary is a Report without its binary payloads, used for listings.
type ReportSummary struct {
	ID         string
	Country    string
	City       string
	Age        int
	FrameCount int
	CreatedAt  time.Time
}

// ReportRepository provides CRUD operations for archived reports.
type ReportRepository struct {
	db *sql.DB
}

// Reports returns the report repository for this store.
func (s *Store) Reports() *ReportRepository {
	return &ReportRepository{db: s.db}
}

// Create inserts a new report. A missing ID is filled in with a fresh UUID.
func (r *ReportRepository) Create(rep *Report) error {
	if rep.ID == "" {
		rep.ID = uuid.New().String()
	}
	rep.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO reports (id, country, city, age, frame_count, text, thumbnail, pdf, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.Country, rep.City, rep.Age, rep.FrameCount, rep.Text, rep.Thumbnail, rep.PDF, rep.CreatedAt,
	)
	return err
}

// GetByID retrieves a report, including its PDF payload.
func (r *ReportRepository) GetByID(id string) (*Report, error) {
	rep := &Report{}

	err := r.db.QueryRow(
		`SELECT id, country, city, age, frame_count, text, thumbnail, pdf, created_at
		 FROM reports WHERE id = ?`,
		id,
	).Scan(&rep.ID, &rep.Country, &rep.City, &rep.Age, &rep.FrameCount, &rep.Text, &rep.Thumbnail, &rep.PDF, &rep.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return rep, nil
}

// List returns summaries of all reports, newest first.
func (r *ReportRepository) List() ([]*ReportSummary, error) {
	rows, err := r.db.Query(
		`SELECT id, country, city, age, frame_count, created_at
		 FROM reports ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ReportSummary
	for rows.Next() {
		s := &ReportSummary{}
		if err := rows.Scan(&s.ID, &s.Country, &s.City, &s.Age, &s.FrameCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// Delete removes a report by ID.
func (r *ReportRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
