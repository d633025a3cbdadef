package service

import (
	"context"

	"github.com/franbe7/XLBALL/internal/domain"
)

// Host is the set of room-control actions offered by the live-session host.
type Host interface {
	Announce(ctx context.Context, a domain.Announcement) error
	SetAdmin(ctx context.Context, playerID int, admin bool) error
	SetCustomStadium(ctx context.Context, raw string) error
	Players(ctx context.Context) ([]domain.Player, error)
}

// StatsStore is the persisted statistics store fed by match events.
type StatsStore interface {
	Touch(key string, info domain.PlayerInfo) domain.PlayerRecord
	AddStat(key string, field domain.StatField, amount int)
	AddMatchResult(key string, didWin, didLose bool)
	IncrementTotalMatches()
	GetPlayer(key string) (*domain.PlayerRecord, error)
	TopBy(field domain.StatField, limit int) []domain.PlayerRecord
}
