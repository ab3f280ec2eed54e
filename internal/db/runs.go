package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/gaitevents/internal/events"
)

// ErrRunNotFound is returned when a run ID has no stored run.
var ErrRunNotFound = errors.New("detection run not found")

// Run describes one detection call over one recording.
type Run struct {
	ID              string
	CreatedAt       time.Time
	Source          string // input file or other label
	SamplingFreqHz  float64
	Axis            string
	Units           string
	Version         string
	GaitSequences   int
	InitialContacts int
	ConfigJSON      string
}

// InsertRun stores run and its events in one transaction. A missing run ID
// is filled with a new UUID and a zero CreatedAt with the current time. The
// stored run ID is returned.
func (db *DB) InsertRun(run Run, tbl events.Table) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.ConfigJSON == "" {
		run.ConfigJSON = "{}"
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO detection_runs (
			run_id, created_unix_nanos, source, sampling_freq_hz, axis, units,
			version, gait_sequences, initial_contacts, config_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Source, run.SamplingFreqHz, run.Axis, run.Units,
		run.Version, run.GaitSequences, run.InitialContacts, run.ConfigJSON,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events (
			run_id, row_index, onset, duration, event_type, tracking_systems, tracked_points
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare events: %w", err)
	}
	defer stmt.Close()

	for i, e := range tbl.Events {
		onset := sql.NullFloat64{Float64: e.Onset, Valid: !e.OnsetMissing}
		if _, err := stmt.Exec(run.ID, i, onset, e.Duration, e.EventType, e.TrackingSystems, e.TrackedPoints); err != nil {
			return "", fmt.Errorf("insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

// Events returns the stored event table of a run in insertion order.
func (db *DB) Events(runID string) (events.Table, error) {
	if _, err := db.Run(runID); err != nil {
		return events.Table{}, err
	}
	rows, err := db.Query(`
		SELECT onset, duration, event_type, tracking_systems, tracked_points
		FROM events WHERE run_id = ? ORDER BY row_index`, runID)
	if err != nil {
		return events.Table{}, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var tbl events.Table
	for rows.Next() {
		var (
			e     events.Event
			onset sql.NullFloat64
		)
		if err := rows.Scan(&onset, &e.Duration, &e.EventType, &e.TrackingSystems, &e.TrackedPoints); err != nil {
			return events.Table{}, fmt.Errorf("scan event: %w", err)
		}
		e.Onset, e.OnsetMissing = onset.Float64, !onset.Valid
		tbl.Events = append(tbl.Events, e)
	}
	return tbl, rows.Err()
}

const runColumns = `run_id, created_unix_nanos, source, sampling_freq_hz, axis, units,
	version, gait_sequences, initial_contacts, config_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var (
		r     Run
		nanos int64
	)
	err := s.Scan(&r.ID, &nanos, &r.Source, &r.SamplingFreqHz, &r.Axis, &r.Units,
		&r.Version, &r.GaitSequences, &r.InitialContacts, &r.ConfigJSON)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, nanos)
	return r, nil
}

// Run returns one stored run.
func (db *DB) Run(runID string) (Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM detection_runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	return r, nil
}

// Runs returns all stored runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`SELECT ` + runColumns + ` FROM detection_runs ORDER BY created_unix_nanos DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its events.
func (db *DB) DeleteRun(runID string) error {
	res, err := db.Exec(`DELETE FROM detection_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
