package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/franbe7/XLBALL/internal/constants"
	"github.com/franbe7/XLBALL/internal/domain"

	"github.com/rs/zerolog"
)

var ErrRoomClosed = errors.New("room loop is not running")

type envelope struct {
	event domain.Event
	reply chan bool
}

// Room serializes every host event onto one goroutine, so handlers run to
// completion one at a time and match state needs no locking.
type Room struct {
	match    *MatchAttributor
	commands *CommandService
	stadium  *StadiumLoader
	host     Host
	logger   zerolog.Logger

	events chan envelope
	done   chan struct{}

	adminAssigned bool
}

func NewRoom(match *MatchAttributor, commands *CommandService, stadium *StadiumLoader, host Host, logger zerolog.Logger) *Room {
	return &Room{
		match:    match,
		commands: commands,
		stadium:  stadium,
		host:     host,
		logger:   logger.With().Str("component", "room").Logger(),
		events:   make(chan envelope, constants.EventQueueSize),
		done:     make(chan struct{}),
	}
}

// Dispatch queues ev for the loop and waits for its result. The returned
// bool only matters for chat events: false suppresses delivery.
func (r *Room) Dispatch(ctx context.Context, ev domain.Event) (bool, error) {
	if err := ev.Validate(); err != nil {
		return false, err
	}

	env := envelope{event: ev, reply: make(chan bool, 1)}
	select {
	case r.events <- env:
	case <-r.done:
		return false, ErrRoomClosed
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case deliver := <-env.reply:
		return deliver, nil
	case <-r.done:
		return false, ErrRoomClosed
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Run executes queued events until ctx is cancelled.
func (r *Room) Run(ctx context.Context) error {
	defer close(r.done)

	r.logger.Info().Msg("room loop started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("room loop stopped")
			return nil
		case env := <-r.events:
			env.reply <- r.handle(ctx, env.event)
		}
	}
}

func (r *Room) handle(ctx context.Context, ev domain.Event) bool {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	switch ev.Type {
	case domain.EventRoomLink:
		r.logger.Info().Str("link", ev.Link).Msg("room link received")
		if _, err := r.stadium.Load(ctx); err != nil {
			r.logger.Error().Err(err).Msg("failed to load custom stadium")
		}
	case domain.EventMatchStart:
		r.match.MatchStart(ctx)
	case domain.EventMatchStop:
		r.match.MatchStop()
	case domain.EventTeamGoal:
		r.match.TeamGoal(ev.Team)
	case domain.EventBallTouch:
		r.match.BallTouch(*ev.Player)
	case domain.EventTeamChange:
		r.match.TeamChange(*ev.Player)
	case domain.EventPlayerJoin:
		r.playerJoin(ctx, *ev.Player)
	case domain.EventPlayerLeave:
		r.match.PlayerLeave(*ev.Player)
	case domain.EventPlayerChat:
		return r.commands.Handle(ctx, *ev.Player, ev.Message)
	}
	return true
}

func (r *Room) playerJoin(ctx context.Context, p domain.Player) {
	if !r.adminAssigned {
		r.adminAssigned = true
		r.assignAdmin(ctx, p)
	}

	r.match.PlayerJoin(p)

	id := p.ID
	r.announce(ctx, domain.Announcement{
		Message:  "Welcome. Commands: !me !top !help",
		TargetID: &id,
		Color:    constants.AnnounceColorReply,
		Style:    domain.StyleNormal,
		Sound:    1,
	})
}

// assignAdmin makes the first player to join since start an admin.
func (r *Room) assignAdmin(ctx context.Context, p domain.Player) {
	if err := r.host.SetAdmin(ctx, p.ID, true); err != nil {
		r.logger.Error().Err(err).Int("player_id", p.ID).Msg("failed to grant admin")
		return
	}
	r.logger.Info().Int("player_id", p.ID).Str("name", p.Name).Msg("first player granted admin")
	r.announce(ctx, domain.Announcement{
		Message: fmt.Sprintf("%s is admin (first user to join).", p.Name),
		Color:   constants.AnnounceColorAdmin,
		Style:   domain.StyleNormal,
		Sound:   1,
	})
}

func (r *Room) announce(ctx context.Context, a domain.Announcement) {
	if err := r.host.Announce(ctx, a); err != nil {
		r.logger.Warn().Err(err).Msg("failed to send announcement")
	}
}
