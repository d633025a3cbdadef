package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/franbe7/XLBALL/internal/constants"
	"github.com/franbe7/XLBALL/internal/domain"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const commandPrefix = "!"

var topMetrics = []domain.StatField{
	domain.StatGoals,
	domain.StatWins,
	domain.StatMatchesPlayed,
	domain.StatShots,
}

// CommandService answers chat commands. Handle reports whether the host
// should still deliver the message to the room.
type CommandService struct {
	stats   StatsStore
	host    Host
	stadium *StadiumLoader
	logger  zerolog.Logger
}

func NewCommandService(stats StatsStore, host Host, stadium *StadiumLoader, logger zerolog.Logger) *CommandService {
	return &CommandService{
		stats:   stats,
		host:    host,
		stadium: stadium,
		logger:  logger.With().Str("component", "commands").Logger(),
	}
}

func (c *CommandService) Handle(ctx context.Context, p domain.Player, message string) bool {
	if !strings.HasPrefix(message, commandPrefix) {
		return true
	}

	fields := strings.Fields(message)
	if len(fields) == 0 {
		return true
	}
	command, args := fields[0], fields[1:]

	switch command {
	case "!help":
		c.reply(ctx, p, "Commands: !me | !stats | !top ["+strings.Join(metricNames(), "|")+"] | !map")
	case "!me", "!stats":
		c.handleMe(ctx, p)
	case "!top":
		c.handleTop(ctx, p, args)
	case "!map":
		c.handleMap(ctx, p)
	default:
		return true
	}

	c.logger.Debug().Str("command", command).Int("player_id", p.ID).Msg("command handled")
	return false
}

func (c *CommandService) handleMe(ctx context.Context, p domain.Player) {
	rec, err := c.stats.GetPlayer(domain.PlayerKey(p))
	if err != nil {
		c.reply(ctx, p, "No stats yet for your user.")
		return
	}
	c.reply(ctx, p, FormatPlayerStats(rec))
}

func (c *CommandService) handleTop(ctx context.Context, p domain.Player, args []string) {
	metric, ok := domain.StatGoals, true
	if len(args) > 0 {
		metric, ok = domain.ParseStatField(args[0])
	}
	if !ok || !lo.Contains(topMetrics, metric) {
		c.reply(ctx, p, "Invalid metric. Use: "+strings.Join(metricNames(), ", "))
		return
	}

	top := c.stats.TopBy(metric, constants.TopLimit)
	if len(top) == 0 {
		c.reply(ctx, p, "No ranking data yet.")
		return
	}

	entries := lo.Map(top, func(r domain.PlayerRecord, i int) string {
		return fmt.Sprintf("%d.%s(%d)", i+1, r.Name, r.Value(metric))
	})
	c.reply(ctx, p, fmt.Sprintf("TOP %s: %s", metric, strings.Join(entries, " | ")))
}

func (c *CommandService) handleMap(ctx context.Context, p domain.Player) {
	loaded, err := c.stadium.Load(ctx)
	switch {
	case err != nil:
		c.logger.Error().Err(err).Msg("failed to load custom stadium")
		c.reply(ctx, p, "Could not load the custom map.")
	case !loaded:
		c.reply(ctx, p, "Custom map not found, keeping the default one.")
	default:
		c.reply(ctx, p, "Custom map loaded.")
	}
}

func (c *CommandService) reply(ctx context.Context, p domain.Player, text string) {
	id := p.ID
	err := c.host.Announce(ctx, domain.Announcement{
		Message:  text,
		TargetID: &id,
		Color:    constants.AnnounceColorReply,
		Style:    domain.StyleNormal,
		Sound:    1,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn().Err(err).Int("player_id", p.ID).Msg("failed to send reply")
	}
}

// FormatPlayerStats renders a record as a single chat line.
func FormatPlayerStats(r *domain.PlayerRecord) string {
	winRate := 0
	if r.MatchesPlayed > 0 {
		winRate = int(math.Round(float64(r.Wins) / float64(r.MatchesPlayed) * 100))
	}
	return fmt.Sprintf("%s | PJ:%d W:%d L:%d WR:%d%% G:%d OG:%d S:%d",
		r.Name, r.MatchesPlayed, r.Wins, r.Losses, winRate, r.Goals, r.OwnGoals, r.Shots)
}

func metricNames() []string {
	return lo.Map(topMetrics, func(f domain.StatField, _ int) string { return string(f) })
}
