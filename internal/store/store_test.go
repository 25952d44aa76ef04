package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	st, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func TestOpen_CreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bones.db")
	st := openTestStore(t, path)
	defer st.Close()

	if err := st.DB().Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bones.db")

	st := openTestStore(t, path)
	if _, err := st.DB().Exec(
		`INSERT INTO games (id, project_url, category, target_score, hunt_seconds, review_seconds, num_agents, created_at, updated_at)
		 VALUES ('g1', 'url', 'bugs', 5, 600, 300, 4, ?, ?)`,
		FormatTime(time.Now()), FormatTime(time.Now())); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Schema creation and migrations must be safe to rerun, and data survives.
	st2 := openTestStore(t, path)
	defer st2.Close()

	var count int
	if err := st2.DB().QueryRow("SELECT COUNT(*) FROM games").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 game after reopen, got %d", count)
	}
}

func TestTx_RollsBackOnError(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "bones.db"))
	defer st.Close()
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO games (id, project_url, category, target_score, hunt_seconds, review_seconds, num_agents, created_at, updated_at)
			 VALUES ('g1', 'url', 'bugs', 5, 600, 300, 4, ?, ?)`,
			FormatTime(time.Now()), FormatTime(time.Now())); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	if err := st.DB().QueryRow("SELECT COUNT(*) FROM games").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback to discard the insert, got %d rows", count)
	}
}

func TestTx_CommitsOnSuccess(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "bones.db"))
	defer st.Close()
	ctx := context.Background()

	err := st.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO games (id, project_url, category, target_score, hunt_seconds, review_seconds, num_agents, created_at, updated_at)
			 VALUES ('g1', 'url', 'bugs', 5, 600, 300, 4, ?, ?)`,
			FormatTime(time.Now()), FormatTime(time.Now()))
		return err
	})
	if err != nil {
		t.Fatalf("Tx: %v", err)
	}

	var count int
	if err := st.DB().QueryRow("SELECT COUNT(*) FROM games").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after commit, got %d", count)
	}
}

func TestDuplicateDisputeRejected(t *testing.T) {
	st := openTestStore(t, filepath.Join(t.TempDir(), "bones.db"))
	defer st.Close()

	now := FormatTime(time.Now())
	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := st.DB().Exec(query, args...); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	mustExec(`INSERT INTO games (id, project_url, category, target_score, hunt_seconds, review_seconds, num_agents, created_at, updated_at)
	          VALUES ('g1', 'url', 'bugs', 5, 600, 300, 4, ?, ?)`, now, now)
	mustExec(`INSERT INTO findings (game_id, agent_id, round, file_path, line_start, line_end, description, pattern_hash, created_at, updated_at)
	          VALUES ('g1', 'g1-ash', 1, 'a.go', 1, 2, 'desc', 'hash', ?, ?)`, now, now)
	mustExec(`INSERT INTO disputes (game_id, finding_id, disputer_id, round, reason, created_at)
	          VALUES ('g1', 1, 'g1-bay', 1, 'reason', ?)`, now)

	_, err := st.DB().Exec(`INSERT INTO disputes (game_id, finding_id, disputer_id, round, reason, created_at)
	                        VALUES ('g1', 1, 'g1-bay', 1, 'again', ?)`, now)
	if err == nil {
		t.Fatal("expected the unique index to reject a second dispute by the same agent")
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC().Truncate(time.Microsecond)
	parsed, err := ParseTime(FormatTime(now))
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("round trip changed the time: %v vs %v", now, parsed)
	}
}

func TestParseTime_LegacyFormats(t *testing.T) {
	t.Parallel()
	for _, s := range []string{
		"2026-08-25T10:30:00Z",
		"2026-08-25 10:30:00",
	} {
		if _, err := ParseTime(s); err != nil {
			t.Errorf("ParseTime(%q): %v", s, err)
		}
	}
}

func TestNullTime(t *testing.T) {
	t.Parallel()
	if NullTime(nil) != nil {
		t.Error("expected nil for a nil time")
	}
	now := time.Now()
	if NullTime(&now) == nil {
		t.Error("expected a value for a set time")
	}

	got, err := ParseNullTime(sqlNullString(""))
	if err != nil || got != nil {
		t.Errorf("expected nil for empty string, got %v, %v", got, err)
	}
}

func sqlNullString(s string) (ns sql.NullString) {
	ns.String = s
	ns.Valid = s != ""
	return ns
}
