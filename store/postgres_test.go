package store

import (
	"strings"
	"testing"
	"time"

	"github.com/asalkeld/fetchbot/standup"
)

func TestPostgresImplementsStore(t *testing.T) {
	var _ standup.Store = (*Postgres)(nil)
}

func TestNewPostgresInitializes(t *testing.T) {
	p := NewPostgres(nil)
	if p == nil {
		t.Fatal("expected non-nil store")
	}
	if p.now == nil {
		t.Fatal("expected a clock")
	}
}

func TestStampNewAssignsIdentityAndTimestamps(t *testing.T) {
	fixed := time.Date(2022, 3, 23, 9, 0, 0, 0, time.UTC)
	p := &Postgres{now: func() time.Time { return fixed }}

	s := &standup.Standup{UserID: "u1", ChannelID: "c1", State: standup.StateActive}
	p.stampNew(s)

	if s.ID == "" {
		t.Error("expected a generated ID")
	}
	if !s.CreatedAt.Equal(fixed) || !s.UpdatedAt.Equal(fixed) {
		t.Errorf("timestamps = %v / %v, want %v", s.CreatedAt, s.UpdatedAt, fixed)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations")
	}

	ups := 0
	downs := 0
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups++
		case strings.HasSuffix(name, ".down.sql"):
			downs++
		default:
			t.Errorf("unexpected migration file %s", name)
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("migrations unbalanced: %d up, %d down", ups, downs)
	}
}
