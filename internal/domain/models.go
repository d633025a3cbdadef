package domain

import (
	"time"
)

type Team int

const (
	TeamSpectator Team = 0
	TeamRed       Team = 1
	TeamBlue      Team = 2
)

func (t Team) IsPlaying() bool {
	return t == TeamRed || t == TeamBlue
}

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "spectator"
	}
}

// Player is a participant as described by the live-session host.
type Player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Team Team   `json:"team"`
	Auth string `json:"auth,omitempty"`
	Conn string `json:"conn,omitempty"`
}

// PlayerInfo carries the identity fields refreshed on every sighting.
// Empty fields never overwrite stored values.
type PlayerInfo struct {
	Name string
	Auth string
	Conn string
}

type PlayerRecord struct {
	Key           string    `json:"key"`
	Name          string    `json:"name"`
	Auth          *string   `json:"auth"`
	Conn          *string   `json:"conn"`
	FirstSeenAt   time.Time `json:"firstSeenAt"`
	LastSeenAt    time.Time `json:"lastSeenAt"`
	MatchesPlayed int       `json:"matchesPlayed"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	Goals         int       `json:"goals"`
	OwnGoals      int       `json:"ownGoals"`
	Shots         int       `json:"shots"`
}

type StoreMeta struct {
	SchemaVersion int       `json:"schemaVersion"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	TotalMatches  int       `json:"totalMatches"`
}

// MatchResult is the per-participant outcome submitted at match stop.
type MatchResult struct {
	Key     string
	Team    Team
	DidWin  bool
	DidLose bool
}
