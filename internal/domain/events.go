package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidEvent = errors.New("invalid event")

type EventType string

const (
	EventMatchStart  EventType = "match_start"
	EventMatchStop   EventType = "match_stop"
	EventTeamGoal    EventType = "team_goal"
	EventBallTouch   EventType = "ball_touch"
	EventPlayerJoin  EventType = "player_join"
	EventPlayerLeave EventType = "player_leave"
	EventTeamChange  EventType = "team_change"
	EventPlayerChat  EventType = "chat"
	EventRoomLink    EventType = "room_link"
)

// Event is one notification from the live-session host.
type Event struct {
	Type    EventType `json:"type"`
	Team    Team      `json:"team,omitempty"`
	Player  *Player   `json:"player,omitempty"`
	Message string    `json:"message,omitempty"`
	Link    string    `json:"link,omitempty"`
}

func (e Event) Validate() error {
	switch e.Type {
	case EventMatchStart, EventMatchStop, EventRoomLink:
		return nil
	case EventTeamGoal:
		if !e.Team.IsPlaying() {
			return fmt.Errorf("%w: goal for non-playing team %d", ErrInvalidEvent, e.Team)
		}
		return nil
	case EventBallTouch, EventPlayerJoin, EventPlayerLeave, EventTeamChange, EventPlayerChat:
		if e.Player == nil {
			return fmt.Errorf("%w: %s requires a player", ErrInvalidEvent, e.Type)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
}

type AnnounceStyle string

const StyleNormal AnnounceStyle = "normal"

// Announcement is a chat message sent through the host. A nil TargetID
// broadcasts to everyone.
type Announcement struct {
	Message  string        `json:"message"`
	TargetID *int          `json:"targetId,omitempty"`
	Color    int           `json:"color"`
	Style    AnnounceStyle `json:"style"`
	Sound    int           `json:"sound"`
}
