package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hideseek-arcade/internal/game"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStatsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.RegisterUser(ctx, "alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := db.UserStats(ctx, "alice")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if want := (game.Stats{Username: "alice"}); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := db.UpdateStats(ctx, game.Stats{Username: "alice", Score: 50, AmmoMissed: 3, Ammo: 7}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = db.UserStats(ctx, "alice")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if want := (game.Stats{Username: "alice", Score: 50, AmmoMissed: 3, Ammo: 7}); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestRegisterKeepsExistingRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	db.UpdateStats(ctx, game.Stats{Username: "bob", Score: 30, Ammo: 2})
	if err := db.RegisterUser(ctx, "bob"); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, _ := db.UserStats(ctx, "bob")
	if got.Score != 30 || got.Ammo != 2 {
		t.Errorf("register should not reset stats, got %+v", got)
	}
}

func TestUnknownUserIsZeroed(t *testing.T) {
	db := openTestDB(t)
	got, err := db.UserStats(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if got != (game.Stats{Username: "ghost"}) {
		t.Errorf("expected zeroed stats, got %+v", got)
	}
}

func TestEmptyUsername(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.RegisterUser(ctx, "  "); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("expected ErrEmptyUsername, got %v", err)
	}
	if err := db.UpdateStats(ctx, game.Stats{}); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("expected ErrEmptyUsername, got %v", err)
	}
	if _, err := db.UserStats(ctx, ""); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("expected ErrEmptyUsername, got %v", err)
	}
}

func TestAllStatsOrdered(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	db.UpdateStats(ctx, game.Stats{Username: "low", Score: 10})
	db.UpdateStats(ctx, game.Stats{Username: "high", Score: 90})
	db.UpdateStats(ctx, game.Stats{Username: "mid", Score: 40})

	all, err := db.AllStats(ctx)
	if err != nil {
		t.Fatalf("all stats: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
	if all[0].Username != "high" || all[1].Username != "mid" || all[2].Username != "low" {
		t.Errorf("wrong order: %v", all)
	}

	top, err := db.TopStats(ctx, 2)
	if err != nil {
		t.Fatalf("top stats: %v", err)
	}
	if len(top) != 2 || top[0].Username != "high" {
		t.Errorf("unexpected top: %v", top)
	}
}

type failingReader struct{}

func (failingReader) UserStats(context.Context, string) (game.Stats, error) {
	return game.Stats{Score: 99}, errors.New("disk gone")
}

func TestLoadStatsDefaultsOnError(t *testing.T) {
	got := LoadStats(context.Background(), failingReader{}, " carol ")
	if got != (game.Stats{Username: "carol"}) {
		t.Errorf("expected zeroed stats on error, got %+v", got)
	}
}

func TestPassHash(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	hash, err := db.PassHash(ctx, "dave")
	if err != nil || hash != "" {
		t.Fatalf("unclaimed name should have no hash, got %q %v", hash, err)
	}
	db.UpdateStats(ctx, game.Stats{Username: "dave", Score: 20})
	if err := db.SetPassHash(ctx, "dave", "h1"); err != nil {
		t.Fatalf("set hash: %v", err)
	}
	hash, _ = db.PassHash(ctx, "dave")
	if hash != "h1" {
		t.Errorf("expected h1, got %q", hash)
	}
	got, _ := db.UserStats(ctx, "dave")
	if got.Score != 20 {
		t.Error("claiming a name should keep its stats")
	}
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	v, err := db.GetSetting(ctx, "jwt_secret")
	if err != nil || v != "" {
		t.Fatalf("unset key should be empty, got %q %v", v, err)
	}
	db.SetSetting(ctx, "jwt_secret", "a")
	db.SetSetting(ctx, "jwt_secret", "b")
	v, _ = db.GetSetting(ctx, "jwt_secret")
	if v != "b" {
		t.Errorf("expected b, got %q", v)
	}
}

func TestAnalyticsFlushOnStop(t *testing.T) {
	db := openTestDB(t)
	a := newAnalytics(db, time.Hour)

	a.Track(EvtSessionStart, "alice", "s1", "")
	a.Track(EvtSessionEnd, "alice", "s1", `{"score":10}`)
	a.Track(EvtSessionStart, "bob", "s2", "")
	a.Stop()

	counts, err := a.EventCounts(1)
	if err != nil {
		t.Fatalf("event counts: %v", err)
	}
	if counts[EvtSessionStart] != 2 || counts[EvtSessionEnd] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
	users, err := a.ActiveUsers(1)
	if err != nil {
		t.Fatalf("active users: %v", err)
	}
	if users != 2 {
		t.Errorf("expected 2 active users, got %d", users)
	}
	days, err := a.DailyActiveHistory(7)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(days) != 1 || days[0].Count != 2 {
		t.Errorf("unexpected history %v", days)
	}

	// tracking after stop is ignored
	a.Track(EvtSessionStart, "carol", "s3", "")
	a.Stop()
}

func TestAnalyticsNilDB(t *testing.T) {
	a := NewAnalytics(nil)
	a.Track(EvtLogin, "alice", "", "")
	a.SetActiveSessions(3)
	if a.ActiveSessions() != 3 {
		t.Error("live session count not kept")
	}
	a.Stop()
	if counts, err := a.EventCounts(1); counts != nil || err != nil {
		t.Errorf("nil db should report nothing, got %v %v", counts, err)
	}
}
