package websession

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/paperiq/dashboard/internal/backend"
	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/session"
	"github.com/paperiq/dashboard/internal/testutil"
	"github.com/paperiq/dashboard/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cfg Config) (*Manager, *testutil.MockStorage) {
	t.Helper()
	store := testutil.NewMockStorage()
	return NewManager(cfg, upload.NewManager(upload.DefaultValidator(), store, nil), nil), store
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newTestManager(t, Config{})

	s := m.Create()
	require.NotEmpty(t, s.ID)
	assert.False(t, s.Authenticated())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("missing")
	assert.False(t, ok)
	_, ok = m.Get("")
	assert.False(t, ok)
}

func TestManager_DeleteRemovesUpload(t *testing.T) {
	m, store := newTestManager(t, Config{})
	s := m.Create()

	_, err := s.Dashboard.Upload(context.Background(), upload.Candidate{
		Name:    "paper.pdf",
		Size:    3,
		Content: strings.NewReader("pdf"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.GetFileCount())

	m.Delete(s.ID)

	_, ok := m.Get(s.ID)
	assert.False(t, ok)
	assert.Zero(t, store.GetFileCount())
}

func TestManager_Expiry(t *testing.T) {
	m, _ := newTestManager(t, Config{TTL: 20 * time.Millisecond, CleanupInterval: time.Hour})
	s := m.Create()

	time.Sleep(40 * time.Millisecond)
	m.CleanupExpired()

	_, ok := m.Get(s.ID)
	assert.False(t, ok)
	assert.Zero(t, m.Count())
}

func TestManager_EvictsOldestAtCapacity(t *testing.T) {
	m, _ := newTestManager(t, Config{MaxSessions: 2})

	first := m.Create()
	time.Sleep(2 * time.Millisecond)
	second := m.Create()
	time.Sleep(2 * time.Millisecond)
	third := m.Create()

	assert.Equal(t, 2, m.Count())
	_, ok := m.Get(first.ID)
	assert.False(t, ok)
	_, ok = m.Get(second.ID)
	assert.True(t, ok)
	_, ok = m.Get(third.ID)
	assert.True(t, ok)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	fake := testutil.NewFakeBackend(t)
	m, _ := newTestManager(t, Config{BackendURL: fake.URL()})

	a := m.Create()
	b := m.Create()

	_, err := a.Client.Login(context.Background(), backend.LoginRequest{
		Email:    testutil.FakeEmail,
		Password: testutil.FakePassword,
	})
	require.NoError(t, err)

	assert.True(t, a.Authenticated())
	assert.False(t, b.Authenticated())
	assert.Equal(t, testutil.FakeToken, session.Token(a.Storage))

	_, err = b.Client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	user, err := a.Client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-42", user.ID)
	assert.Nil(t, a.Dashboard.Result(models.StepIngestion))
}
