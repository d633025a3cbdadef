package service

import (
	"context"
	"time"

	"github.com/franbe7/XLBALL/internal/constants"
	"github.com/franbe7/XLBALL/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type matchPhase int

const (
	phaseIdle matchPhase = iota
	phaseActive
)

type touch struct {
	key  string
	team domain.Team
	at   time.Time
}

// matchState lives only while a match is active. participants is the
// ordered set of keys that were on a playing team at any point; teamByKey
// holds each key's latest team.
type matchState struct {
	id           string
	phase        matchPhase
	red, blue    int
	lastTouch    *touch
	participants []string
	seen         map[string]struct{}
	teamByKey    map[string]domain.Team
}

func newMatchState() matchState {
	return matchState{
		phase:     phaseIdle,
		seen:      make(map[string]struct{}),
		teamByKey: make(map[string]domain.Team),
	}
}

func (s *matchState) addParticipant(key string, team domain.Team) {
	if _, ok := s.seen[key]; !ok {
		s.seen[key] = struct{}{}
		s.participants = append(s.participants, key)
	}
	s.teamByKey[key] = team
}

// MatchAttributor turns the live event stream into statistic updates. It is
// not safe for concurrent use; the Room loop is its only caller.
type MatchAttributor struct {
	stats  StatsStore
	host   Host
	now    func() time.Time
	logger zerolog.Logger
	state  matchState
}

func NewMatchAttributor(stats StatsStore, host Host, logger zerolog.Logger) *MatchAttributor {
	return newMatchAttributor(stats, host, time.Now, logger)
}

func newMatchAttributor(stats StatsStore, host Host, now func() time.Time, logger zerolog.Logger) *MatchAttributor {
	return &MatchAttributor{
		stats:  stats,
		host:   host,
		now:    now,
		logger: logger.With().Str("component", "match").Logger(),
		state:  newMatchState(),
	}
}

func (m *MatchAttributor) Active() bool {
	return m.state.phase == phaseActive
}

func (m *MatchAttributor) Score() (red, blue int) {
	return m.state.red, m.state.blue
}

// MatchStart resets the match state and seeds participants from the
// players currently in the room.
func (m *MatchAttributor) MatchStart(ctx context.Context) {
	if m.Active() {
		m.logger.Warn().Str("match_id", m.state.id).Msg("match start while active, previous match discarded")
	}

	m.state = newMatchState()
	m.state.phase = phaseActive
	m.state.id = newMatchID(m.logger)

	players, err := m.host.Players(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Str("match_id", m.state.id).Msg("failed to list players at match start")
	}
	for _, p := range players {
		m.register(p)
	}

	m.logger.Info().
		Str("match_id", m.state.id).
		Int("participants", len(m.state.participants)).
		Msg("match started")
}

// PlayerJoin records the player and, during a match, adds them as a
// participant when they join straight onto a playing team.
func (m *MatchAttributor) PlayerJoin(p domain.Player) {
	m.register(p)
}

func (m *MatchAttributor) PlayerLeave(p domain.Player) {
	m.stats.Touch(domain.PlayerKey(p), p.Info())
}

// TeamChange keeps participation once earned; moving to spectator only
// changes the team used for the final result.
func (m *MatchAttributor) TeamChange(p domain.Player) {
	if !m.Active() {
		return
	}
	key := domain.PlayerKey(p)
	if p.Team.IsPlaying() {
		m.state.addParticipant(key, p.Team)
		return
	}
	m.state.teamByKey[key] = domain.TeamSpectator
}

// BallTouch always counts a shot; during a match it also becomes the last
// touch considered for goal credit.
func (m *MatchAttributor) BallTouch(p domain.Player) {
	key := domain.PlayerKey(p)
	m.stats.AddStat(key, domain.StatShots, 1)

	if !m.Active() {
		return
	}
	m.state.lastTouch = &touch{key: key, team: p.Team, at: m.now()}
}

// TeamGoal bumps the score and credits the last toucher with a goal or an
// own goal when the touch is fresher than the stale window.
func (m *MatchAttributor) TeamGoal(team domain.Team) {
	switch team {
	case domain.TeamRed:
		m.state.red++
	case domain.TeamBlue:
		m.state.blue++
	}

	lt := m.state.lastTouch
	if lt == nil {
		m.logger.Debug().Str("team", team.String()).Msg("goal without touch, no credit")
		return
	}
	if age := m.now().Sub(lt.at); age >= constants.TouchStaleWindow {
		m.logger.Debug().Str("team", team.String()).Dur("touch_age", age).Msg("stale touch, no credit")
		return
	}

	switch {
	case lt.team == team:
		m.stats.AddStat(lt.key, domain.StatGoals, 1)
		m.logger.Info().Str("match_id", m.state.id).Str("key", lt.key).Str("team", team.String()).Msg("goal credited")
	case lt.team.IsPlaying():
		m.stats.AddStat(lt.key, domain.StatOwnGoals, 1)
		m.logger.Info().Str("match_id", m.state.id).Str("key", lt.key).Str("team", team.String()).Msg("own goal credited")
	}
}

// MatchStop settles win/loss for every participant and returns the results
// applied. A stop while idle is ignored.
func (m *MatchAttributor) MatchStop() []domain.MatchResult {
	if !m.Active() {
		m.logger.Debug().Msg("match stop while idle ignored")
		return nil
	}

	st := m.state
	m.state = newMatchState()

	winner, decided := domain.TeamSpectator, false
	switch {
	case st.red > st.blue:
		winner, decided = domain.TeamRed, true
	case st.blue > st.red:
		winner, decided = domain.TeamBlue, true
	}

	results := make([]domain.MatchResult, 0, len(st.participants))
	for _, key := range st.participants {
		team, ok := st.teamByKey[key]
		if !ok {
			team = domain.TeamSpectator
		}
		res := domain.MatchResult{
			Key:     key,
			Team:    team,
			DidWin:  decided && team == winner,
			DidLose: decided && team.IsPlaying() && team != winner,
		}
		m.stats.AddMatchResult(res.Key, res.DidWin, res.DidLose)
		results = append(results, res)
	}
	m.stats.IncrementTotalMatches()

	m.logger.Info().
		Str("match_id", st.id).
		Int("red", st.red).
		Int("blue", st.blue).
		Int("participants", len(results)).
		Msg("match finished")
	return results
}

func (m *MatchAttributor) register(p domain.Player) {
	key := domain.PlayerKey(p)
	m.stats.Touch(key, p.Info())
	if m.Active() && p.Team.IsPlaying() {
		m.state.addParticipant(key, p.Team)
	}
}

func newMatchID(logger zerolog.Logger) string {
	id, err := gonanoid.New(12)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to generate match id")
		return ""
	}
	return id
}
