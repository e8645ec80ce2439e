// Package persistence provides SQLite storage for sessions, round history,
// process telemetry, and high scores.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/cytogenesis/internal/game"
	"github.com/talgya/cytogenesis/internal/telemetry"
)

// HighscoreLimit is how many scores are kept per game length.
const HighscoreLimit = 10

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		player TEXT NOT NULL,
		number_levels INTEGER NOT NULL,
		levels_played INTEGER NOT NULL,
		credits REAL NOT NULL,
		run_biomass REAL NOT NULL,
		finished INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rounds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		config_version INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		biomass REAL NOT NULL,
		substrate REAL NOT NULL,
		cells INTEGER NOT NULL,
		tiles INTEGER NOT NULL,
		credits_earned REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS process_samples (
		session_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		t REAL NOT NULL,
		biomass REAL NOT NULL,
		growth_rate REAL NOT NULL,
		substrate REAL NOT NULL,
		PRIMARY KEY (session_id, level, seq)
	);

	CREATE TABLE IF NOT EXISTS highscores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		levels INTEGER NOT NULL,
		name TEXT NOT NULL,
		score REAL NOT NULL,
		UNIQUE (levels, name, score)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rounds_session ON rounds(session_id);
	CREATE INDEX IF NOT EXISTS idx_highscores_levels ON highscores(levels, score DESC);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RoundRow is one stored round.
type RoundRow struct {
	ID            int64   `db:"id" json:"id"`
	SessionID     string  `db:"session_id" json:"session_id"`
	Level         int     `db:"level" json:"level"`
	ConfigVersion int     `db:"config_version" json:"config_version"`
	Ticks         int64   `db:"ticks" json:"ticks"`
	Biomass       float64 `db:"biomass" json:"biomass"`
	Substrate     float64 `db:"substrate" json:"substrate"`
	Cells         int     `db:"cells" json:"cells"`
	Tiles         int     `db:"tiles" json:"tiles"`
	CreditsEarned float64 `db:"credits_earned" json:"credits_earned"`
}

// HighscoreRow is one high-score table entry.
type HighscoreRow struct {
	Name  string  `db:"name" json:"name"`
	Score float64 `db:"score" json:"score"`
}

type sampleRow struct {
	T          float64 `db:"t"`
	Biomass    float64 `db:"biomass"`
	GrowthRate float64 `db:"growth_rate"`
	Substrate  float64 `db:"substrate"`
}

// SaveSession upserts the session summary.
func (db *DB) SaveSession(s *game.Session) error {
	p := s.Params()
	finished := 0
	if s.Finished() {
		finished = 1
	}
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO sessions
		(id, player, number_levels, levels_played, credits, run_biomass, finished)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.Player, p.NumberLevels, len(s.Outcomes()),
		s.Credits(), s.RunBiomass(), finished,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// SaveRound appends a booked round.
func (db *DB) SaveRound(sessionID uuid.UUID, out game.RoundOutcome) error {
	r := out.Result
	_, err := db.conn.Exec(`INSERT INTO rounds
		(session_id, level, config_version, ticks, biomass, substrate, cells, tiles, credits_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID.String(), r.Level, r.ConfigVersion, int64(r.Ticks),
		r.Biomass, r.Substrate, r.Cells, r.Tiles, out.CreditsEarned,
	)
	if err != nil {
		return fmt.Errorf("insert round level %d: %w", r.Level, err)
	}
	return nil
}

// SaveSamples writes a round's telemetry (full replace for that round).
func (db *DB) SaveSamples(sessionID uuid.UUID, level int, samples []telemetry.Sample) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM process_samples WHERE session_id = ? AND level = ?",
		sessionID.String(), level); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO process_samples
		(session_id, level, seq, t, biomass, growth_rate, substrate)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range samples {
		if _, err := stmt.Exec(sessionID.String(), level, i, s.Time, s.Biomass, s.GrowthRate, s.Substrate); err != nil {
			return fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadSamples returns a round's telemetry in recording order.
func (db *DB) LoadSamples(sessionID uuid.UUID, level int) ([]telemetry.Sample, error) {
	var rows []sampleRow
	err := db.conn.Select(&rows,
		"SELECT t, biomass, growth_rate, substrate FROM process_samples WHERE session_id = ? AND level = ? ORDER BY seq",
		sessionID.String(), level,
	)
	if err != nil {
		return nil, err
	}
	samples := make([]telemetry.Sample, len(rows))
	for i, r := range rows {
		samples[i] = telemetry.Sample{Time: r.T, Biomass: r.Biomass, GrowthRate: r.GrowthRate, Substrate: r.Substrate}
	}
	return samples, nil
}

// RecentRounds returns the most recent N rounds, newest first.
func (db *DB) RecentRounds(limit int) ([]RoundRow, error) {
	var rows []RoundRow
	err := db.conn.Select(&rows,
		`SELECT id, session_id, level, config_version, ticks, biomass, substrate, cells, tiles, credits_earned
		FROM rounds ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return rows, err
}

// Highscores returns the table for games of the given length, best first.
func (db *DB) Highscores(levels int) ([]HighscoreRow, error) {
	var rows []HighscoreRow
	err := db.conn.Select(&rows,
		"SELECT name, score FROM highscores WHERE levels = ? ORDER BY score DESC, id ASC LIMIT ?",
		levels, HighscoreLimit,
	)
	return rows, err
}

// UpdateHighscores adds a score to the table for its game length, keeping the best
// HighscoreLimit unique (name, score) entries. It returns the table and the new entry's
// position in it, or -1 if it did not make the cut.
func (db *DB) UpdateHighscores(levels int, score float64, name string) ([]HighscoreRow, int, error) {
	tx, err := db.conn.Beginx()
	if err != nil {
		return nil, -1, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR IGNORE INTO highscores (levels, name, score) VALUES (?, ?, ?)",
		levels, name, score); err != nil {
		return nil, -1, fmt.Errorf("insert highscore: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM highscores WHERE levels = ? AND id NOT IN
		(SELECT id FROM highscores WHERE levels = ? ORDER BY score DESC, id ASC LIMIT ?)`,
		levels, levels, HighscoreLimit); err != nil {
		return nil, -1, fmt.Errorf("trim highscores: %w", err)
	}

	var rows []HighscoreRow
	if err := tx.Select(&rows,
		"SELECT name, score FROM highscores WHERE levels = ? ORDER BY score DESC, id ASC",
		levels); err != nil {
		return nil, -1, err
	}
	if err := tx.Commit(); err != nil {
		return nil, -1, err
	}

	index := -1
	for i, r := range rows {
		if r.Name == name && r.Score == score {
			index = i
			break
		}
	}
	return rows, index, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. A missing key yields "" and no error.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SaveRoundComplete stores everything a finished round produced and refreshes the session row.
func (db *DB) SaveRoundComplete(s *game.Session, out game.RoundOutcome, samples []telemetry.Sample) error {
	slog.Debug("saving round", "session", s.ID, "level", out.Result.Level, "samples", len(samples))

	if err := db.SaveRound(s.ID, out); err != nil {
		return fmt.Errorf("save round: %w", err)
	}
	if err := db.SaveSamples(s.ID, out.Result.Level, samples); err != nil {
		return fmt.Errorf("save samples: %w", err)
	}
	if err := db.SaveSession(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
