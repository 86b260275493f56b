package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sakif/alive-sleep/internal/config"
	"github.com/sakif/alive-sleep/internal/identity"
	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository/sqlstore"
)

// fakeClock hands out a fixed time that tests advance explicitly.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	store     *sqlstore.Store
	clock     *fakeClock
	users     *UserService
	entries   *EntryService
	summaries *SummaryService
}

// newTestEnv wires every service over a private in-memory SQLite store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)

	conn := sqlstore.NewConnector(config.DriverSQLite, ":memory:", 5*time.Second, sqlstore.WithLogger(logger))
	t.Cleanup(func() { conn.Close() })
	store := sqlstore.New(conn)

	hasher, err := identity.NewHasher("test-key")
	require.NoError(t, err)

	clock := newFakeClock(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
	return &testEnv{
		store:     store,
		clock:     clock,
		users:     NewUserService(store.Users(), hasher, clock.Now, logger),
		entries:   NewEntryService(store.Entries(), clock.Now, logger),
		summaries: NewSummaryService(store.Entries(), store.Summaries(), clock.Now, logger),
	}
}

func (e *testEnv) newUser(t *testing.T, externalID string) *model.User {
	t.Helper()
	u, err := e.users.GetOrCreateUser(context.Background(), externalID)
	require.NoError(t, err)
	return u
}

func (e *testEnv) addEntry(t *testing.T, userID, day string, minutes int) *model.SleepEntry {
	t.Helper()
	entry, err := e.entries.Upsert(context.Background(), userID, model.RawEntry{EntryTime: day, Duration: &minutes})
	require.NoError(t, err)
	return entry
}

func ptr[T any](v T) *T { return &v }

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, ok := ParseDate(s)
	require.True(t, ok, "bad date %q", s)
	return d
}
