package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/franbe7/XLBALL/internal/config"
	"github.com/franbe7/XLBALL/internal/constants"
	"github.com/franbe7/XLBALL/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrPlayerNotFound = errors.New("player not found")

// StatsRepository owns the cumulative player statistics and their JSON
// snapshot on disk. Mutations apply to memory first and schedule one
// debounced flush; reads always see the in-memory state.
type StatsRepository struct {
	path   string
	delay  time.Duration
	writer SnapshotWriter
	now    func() time.Time
	logger zerolog.Logger

	mu      sync.Mutex
	meta    domain.StoreMeta
	players playerTable
	timer   *time.Timer
	gen     uint64
}

type Option func(*StatsRepository)

func WithWriter(w SnapshotWriter) Option {
	return func(r *StatsRepository) { r.writer = w }
}

func WithClock(now func() time.Time) Option {
	return func(r *StatsRepository) { r.now = now }
}

func WithPersistDelay(d time.Duration) Option {
	return func(r *StatsRepository) { r.delay = d }
}

func NewStatsRepository(cfg *config.Config, logger zerolog.Logger) (*StatsRepository, error) {
	return Open(cfg.StatsPath, logger, WithPersistDelay(cfg.PersistDelay))
}

// Open loads the snapshot at path, creating the directory and an empty
// snapshot when missing. A corrupt snapshot is moved aside and replaced
// with an empty one; only filesystem failures while creating are returned.
func Open(path string, logger zerolog.Logger, opts ...Option) (*StatsRepository, error) {
	r := &StatsRepository{
		path:   path,
		delay:  constants.PersistDelay,
		writer: FileWriter{},
		now:    time.Now,
		logger: logger.With().Str("component", "stats").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.reset()

	if err := os.MkdirAll(filepath.Dir(path), constants.SnapshotDirMode); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *StatsRepository) reset() {
	now := r.now().UTC()
	r.meta = domain.StoreMeta{
		SchemaVersion: constants.SnapshotSchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.players = newPlayerTable()
}

func (r *StatsRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info().Str("path", r.path).Msg("stats snapshot not found, creating a new one")
		return r.persistLocked()
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("failed to read stats snapshot, using empty state")
		return nil
	}

	meta, players, err := decodeSnapshot(data)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("unusable stats snapshot, using empty state")
		r.quarantine()
		return r.persistLocked()
	}

	r.meta = meta
	r.players = players
	r.logger.Info().
		Str("path", r.path).
		Int("players", players.len()).
		Int("total_matches", meta.TotalMatches).
		Msg("stats snapshot loaded")
	return nil
}

// quarantine moves an unusable snapshot aside so the next flush does not
// destroy it.
func (r *StatsRepository) quarantine() {
	suffix, err := gonanoid.New(10)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to generate quarantine suffix")
		suffix = fmt.Sprintf("%d", r.now().UnixNano())
	}
	target := r.path + ".corrupt-" + suffix
	if err := os.Rename(r.path, target); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("failed to move corrupt snapshot aside")
		return
	}
	r.logger.Warn().Str("path", target).Msg("corrupt snapshot moved aside")
}

// Touch upserts the record for key, refreshing lastSeenAt and any non-empty
// identity field, and returns a copy of the current record.
func (r *StatsRepository) Touch(key string, info domain.PlayerInfo) domain.PlayerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	p, ok := r.players.get(key)
	if !ok {
		p = &domain.PlayerRecord{
			Key:         key,
			Name:        "Unknown",
			FirstSeenAt: now,
		}
		r.players.insert(p)
		r.logger.Debug().Str("key", key).Msg("player record created")
	}

	p.LastSeenAt = now
	if info.Name != "" {
		p.Name = info.Name
	}
	if info.Auth != "" {
		auth := info.Auth
		p.Auth = &auth
	}
	if info.Conn != "" {
		conn := info.Conn
		p.Conn = &conn
	}

	r.scheduleLocked(r.delay)
	return *p
}

// AddStat adds amount to the named counter. Keys never touched are ignored.
func (r *StatsRepository) AddStat(key string, field domain.StatField, amount int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players.get(key)
	if !ok {
		r.logger.Debug().Str("key", key).Str("field", string(field)).Msg("stat for unknown player ignored")
		return
	}
	if !p.Add(field, amount) {
		r.logger.Warn().Str("key", key).Str("field", string(field)).Int("amount", amount).Msg("invalid stat increment ignored")
		return
	}
	p.LastSeenAt = r.now().UTC()
	r.scheduleLocked(r.delay)
}

func (r *StatsRepository) Increment(key string, field domain.StatField) {
	r.AddStat(key, field, 1)
}

// AddMatchResult counts one played match for key plus a win or a loss.
// A win takes precedence, so a single call never counts both.
func (r *StatsRepository) AddMatchResult(key string, didWin, didLose bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players.get(key)
	if !ok {
		r.logger.Debug().Str("key", key).Msg("match result for unknown player ignored")
		return
	}
	p.MatchesPlayed++
	switch {
	case didWin:
		p.Wins++
	case didLose:
		p.Losses++
	}
	p.LastSeenAt = r.now().UTC()
	r.scheduleLocked(r.delay)
}

func (r *StatsRepository) IncrementTotalMatches() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.meta.TotalMatches++
	r.scheduleLocked(r.delay)
}

func (r *StatsRepository) GetPlayer(key string) (*domain.PlayerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players.get(key)
	if !ok {
		return nil, ErrPlayerNotFound
	}
	out := *p
	return &out, nil
}

// TopBy returns up to limit records ordered by field, highest first. Ties
// keep insertion order.
func (r *StatsRepository) TopBy(field domain.StatField, limit int) []domain.PlayerRecord {
	r.mu.Lock()
	ordered := r.players.ordered()
	out := make([]domain.PlayerRecord, len(ordered))
	for i, p := range ordered {
		out[i] = *p
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value(field) > out[j].Value(field)
	})
	if limit < 0 {
		limit = 0
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *StatsRepository) Meta() domain.StoreMeta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta
}

// PersistNow writes the full snapshot synchronously and cancels any
// pending debounced flush.
func (r *StatsRepository) PersistNow() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	return r.persistLocked()
}

// PersistSoon (re)arms the debounce timer; a burst of calls closer together
// than delay produces a single flush once the burst quiesces.
func (r *StatsRepository) PersistSoon(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scheduleLocked(delay)
}

// Close stops the debounce timer and flushes whatever is in memory.
func (r *StatsRepository) Close() error {
	if err := r.PersistNow(); err != nil {
		r.logger.Error().Err(err).Msg("failed to flush stats on close")
		return err
	}
	r.logger.Info().Msg("stats flushed")
	return nil
}

func (r *StatsRepository) scheduleLocked(delay time.Duration) {
	r.cancelLocked()
	gen := r.gen
	r.timer = time.AfterFunc(delay, func() { r.flushScheduled(gen) })
}

func (r *StatsRepository) cancelLocked() {
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *StatsRepository) flushScheduled(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// superseded by a later schedule or an explicit flush
	if gen != r.gen {
		return
	}
	r.timer = nil
	if err := r.persistLocked(); err != nil {
		r.logger.Error().Err(err).Str("path", r.path).Msg("failed to persist stats")
	}
}

func (r *StatsRepository) persistLocked() error {
	r.meta.UpdatedAt = r.now().UTC()
	data, err := encodeSnapshot(r.meta, r.players)
	if err != nil {
		return fmt.Errorf("failed to encode stats snapshot: %w", err)
	}
	if err := r.writer.WriteSnapshot(r.path, data); err != nil {
		return fmt.Errorf("failed to write stats snapshot: %w", err)
	}
	r.logger.Debug().Str("path", r.path).Int("bytes", len(data)).Msg("stats persisted")
	return nil
}
