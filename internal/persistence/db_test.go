package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/talgya/cytogenesis/internal/config"
	"github.com/talgya/cytogenesis/internal/engine"
	"github.com/talgya/cytogenesis/internal/entropy"
	"github.com/talgya/cytogenesis/internal/game"
	"github.com/talgya/cytogenesis/internal/telemetry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHighscoresKeepTopTen(t *testing.T) {
	db := openTestDB(t)

	for i := 1; i <= 12; i++ {
		if _, _, err := db.UpdateHighscores(5, float64(i*100), "p"); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	rows, err := db.Highscores(5)
	if err != nil {
		t.Fatalf("highscores: %v", err)
	}
	if len(rows) != HighscoreLimit {
		t.Fatalf("%d rows, want %d", len(rows), HighscoreLimit)
	}
	if rows[0].Score != 1200 || rows[len(rows)-1].Score != 300 {
		t.Fatalf("unexpected order: first %v last %v", rows[0].Score, rows[len(rows)-1].Score)
	}

	table, idx, err := db.UpdateHighscores(5, 50, "low")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if idx != -1 || len(table) != HighscoreLimit {
		t.Fatalf("low score placed at %d in a table of %d", idx, len(table))
	}

	_, idx, err = db.UpdateHighscores(5, 650, "mid")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if idx != 6 {
		t.Fatalf("650 placed at %d, want 6", idx)
	}

	// Tables are per game length.
	other, err := db.Highscores(3)
	if err != nil {
		t.Fatalf("highscores: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("3-level table has %d rows", len(other))
	}
}

func TestHighscoreDuplicateIgnored(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 3; i++ {
		if _, _, err := db.UpdateHighscores(1, 42, "same"); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	rows, err := db.Highscores(1)
	if err != nil {
		t.Fatalf("highscores: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("%d rows for one unique entry", len(rows))
	}
}

func TestSamplesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	id := uuid.New()

	tr := telemetry.NewTracker()
	tr.Initialize(0.5, 1)
	tr.Record(0.02, 0.52, 0.98)
	tr.Record(0.04, 0.55, 0.95)

	if err := db.SaveSamples(id, 2, tr.Samples()); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saving again replaces rather than appends.
	if err := db.SaveSamples(id, 2, tr.Samples()); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := db.LoadSamples(id, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := tr.Samples()
	if len(got) != len(want) {
		t.Fatalf("loaded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSaveRoundComplete(t *testing.T) {
	db := openTestDB(t)

	p := config.Default()
	p.NumberLevels = 1
	s, err := game.NewSession(p, "tester")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	s.OnRoundComplete = func(out game.RoundOutcome, r *engine.Round) {
		if err := db.SaveRoundComplete(s, out, r.Tracker.Samples()); err != nil {
			t.Errorf("save round: %v", err)
		}
	}
	out, err := s.PlayRound(entropy.NewSeeded(3), 100000)
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	rows, err := db.RecentRounds(10)
	if err != nil {
		t.Fatalf("recent rounds: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("%d rounds stored", len(rows))
	}
	if rows[0].SessionID != s.ID.String() || rows[0].CreditsEarned != out.CreditsEarned {
		t.Fatalf("stored round %+v", rows[0])
	}
	if rows[0].Ticks != int64(out.Result.Ticks) {
		t.Fatalf("stored %d ticks, want %d", rows[0].Ticks, out.Result.Ticks)
	}

	samples, err := db.LoadSamples(s.ID, 0)
	if err != nil {
		t.Fatalf("load samples: %v", err)
	}
	if len(samples) != int(out.Result.Ticks)+1 {
		t.Fatalf("%d samples for %d ticks", len(samples), out.Result.Ticks)
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	v, err := db.GetMeta("player_name")
	if err != nil || v != "" {
		t.Fatalf("missing key = (%q, %v)", v, err)
	}
	if err := db.SaveMeta("player_name", "ada"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SaveMeta("player_name", "grace"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if v, err := db.GetMeta("player_name"); err != nil || v != "grace" {
		t.Fatalf("GetMeta = (%q, %v)", v, err)
	}
}
