// Package results persists completed sessions to SQLite and reads them
// back for the history views. The session core never depends on this data;
// losing the database costs history, not gameplay.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/typeduel/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for recorded sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			lang TEXT NOT NULL,
			levels INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_players (
			session_id TEXT NOT NULL,
			slot INTEGER NOT NULL,
			device TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			units_done INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, slot)
		);`,
		`CREATE TABLE IF NOT EXISTS session_units (
			session_id TEXT NOT NULL,
			slot INTEGER NOT NULL,
			unit TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, slot, unit)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_units_unit ON session_units(unit);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRecord stores a completed session with its per-player and per-unit
// rows in one transaction.
func (s *Store) InsertRecord(ctx context.Context, rec model.SessionRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, mode, lang, levels)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		string(rec.Mode),
		rec.Lang,
		rec.Levels,
	); err != nil {
		return err
	}

	playerStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_players (session_id, slot, device, correct, incorrect, units_done, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := playerStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, p := range rec.Players {
		if _, err = playerStmt.ExecContext(ctx, rec.ID, int(p.Slot), p.Device, p.Correct, p.Incorrect, p.UnitsDone, p.DurationMs); err != nil {
			return err
		}
	}

	if len(rec.Units) > 0 {
		unitStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_units (session_id, slot, unit, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := unitStmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, u := range rec.Units {
			if _, err = unitStmt.ExecContext(ctx, rec.ID, int(u.Slot), u.Unit, u.Correct, u.Incorrect, u.LatencySumMs, u.LatencyCount); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListRows returns one row per player per recorded session, oldest session
// first with players in slot order. Last trims to the most recent sessions,
// counted by session rather than by row.
func (s *Store) ListRows(ctx context.Context, f model.ResultsFilter) ([]model.ResultRow, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Mode != "" {
		clauses = append(clauses, "s.mode = ?")
		args = append(args, f.Mode)
	}
	if f.Since != nil {
		clauses = append(clauses, "s.ended_at >= ?")
		args = append(args, f.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT s.id, s.ended_at, s.mode, s.lang, s.levels,
			p.slot, p.device, p.correct, p.incorrect, p.units_done, p.duration_ms
		FROM sessions s
		JOIN session_players p ON p.session_id = s.id
		WHERE %s
		ORDER BY s.ended_at ASC, s.id ASC, p.slot ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.ResultRow
	for rows.Next() {
		var r model.ResultRow
		var endedAt, mode string
		var slot int
		if err := rows.Scan(&r.RecordID, &endedAt, &mode, &r.Lang, &r.Levels,
			&slot, &r.Device, &r.Correct, &r.Incorrect, &r.UnitsDone, &r.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		r.EndedAt = parsed
		r.Mode = model.Mode(mode)
		r.Slot = model.Slot(slot)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if f.Last > 0 {
		out = lastSessions(out, f.Last)
	}
	return out, nil
}

// lastSessions keeps the rows of the n most recent distinct sessions.
func lastSessions(rows []model.ResultRow, n int) []model.ResultRow {
	seen := make(map[string]struct{}, n)
	cut := 0
	for i := len(rows) - 1; i >= 0; i-- {
		if _, ok := seen[rows[i].RecordID]; !ok {
			if len(seen) == n {
				cut = i + 1
				break
			}
			seen[rows[i].RecordID] = struct{}{}
		}
	}
	return rows[cut:]
}

// GetRecord loads one stored session in full. The second return is false
// when no session has that id.
func (s *Store) GetRecord(ctx context.Context, id string) (model.SessionRecord, bool, error) {
	var rec model.SessionRecord
	var startedAt, endedAt, mode string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, ended_at, mode, lang, levels FROM sessions WHERE id = ?`, id).
		Scan(&rec.ID, &startedAt, &endedAt, &mode, &rec.Lang, &rec.Levels)
	if err == sql.ErrNoRows {
		return model.SessionRecord{}, false, nil
	}
	if err != nil {
		return model.SessionRecord{}, false, err
	}
	rec.Mode = model.Mode(mode)
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return model.SessionRecord{}, false, err
	}
	if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
		return model.SessionRecord{}, false, err
	}

	if rec.Players, err = s.recordPlayers(ctx, id); err != nil {
		return model.SessionRecord{}, false, err
	}
	if rec.Units, err = s.recordUnits(ctx, id); err != nil {
		return model.SessionRecord{}, false, err
	}
	return rec, true, nil
}

func (s *Store) recordPlayers(ctx context.Context, id string) ([]model.PlayerResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, device, correct, incorrect, units_done, duration_ms
		 FROM session_players WHERE session_id = ? ORDER BY slot ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.PlayerResult
	for rows.Next() {
		var p model.PlayerResult
		var slot int
		if err := rows.Scan(&slot, &p.Device, &p.Correct, &p.Incorrect, &p.UnitsDone, &p.DurationMs); err != nil {
			return nil, err
		}
		p.Slot = model.Slot(slot)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) recordUnits(ctx context.Context, id string) ([]model.UnitResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, unit, correct, incorrect, latency_sum_ms, latency_count
		 FROM session_units WHERE session_id = ? ORDER BY slot ASC, unit ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.UnitResult
	for rows.Next() {
		var u model.UnitResult
		var slot int
		if err := rows.Scan(&slot, &u.Unit, &u.Correct, &u.Incorrect, &u.LatencySumMs, &u.LatencyCount); err != nil {
			return nil, err
		}
		u.Slot = model.Slot(slot)
		out = append(out, u)
	}
	return out, rows.Err()
}
