package service

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/franbe7/XLBALL/internal/domain"
	"github.com/franbe7/XLBALL/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var nopLogger = zerolog.New(io.Discard)

type fakeHost struct {
	mu            sync.Mutex
	players       []domain.Player
	playersErr    error
	actionErr     error
	announcements []domain.Announcement
	admins        []int
	stadiums      []string
}

func (h *fakeHost) Announce(_ context.Context, a domain.Announcement) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.announcements = append(h.announcements, a)
	return h.actionErr
}

func (h *fakeHost) SetAdmin(_ context.Context, playerID int, admin bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.actionErr != nil {
		return h.actionErr
	}
	if admin {
		h.admins = append(h.admins, playerID)
	}
	return nil
}

func (h *fakeHost) SetCustomStadium(_ context.Context, raw string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.actionErr != nil {
		return h.actionErr
	}
	h.stadiums = append(h.stadiums, raw)
	return nil
}

func (h *fakeHost) Players(context.Context) ([]domain.Player, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Player(nil), h.players...), h.playersErr
}

func (h *fakeHost) lastAnnouncement() domain.Announcement {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.announcements) == 0 {
		return domain.Announcement{}
	}
	return h.announcements[len(h.announcements)-1]
}

type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time { return c.t }

func (c *manualClock) Set(ms int64) {
	c.t = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC).Add(time.Duration(ms) * time.Millisecond)
}

func newTestStore(t *testing.T) *repository.StatsRepository {
	t.Helper()
	repo, err := repository.Open(filepath.Join(t.TempDir(), "stats.json"), nopLogger,
		repository.WithPersistDelay(time.Hour))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustPlayer(t *testing.T, store StatsStore, p domain.Player) *domain.PlayerRecord {
	t.Helper()
	rec, err := store.GetPlayer(domain.PlayerKey(p))
	require.NoError(t, err)
	return rec
}
