package domain

// StatField names a numeric counter of a PlayerRecord.
type StatField string

const (
	StatMatchesPlayed StatField = "matchesPlayed"
	StatWins          StatField = "wins"
	StatLosses        StatField = "losses"
	StatGoals         StatField = "goals"
	StatOwnGoals      StatField = "ownGoals"
	StatShots         StatField = "shots"
)

var statFields = []StatField{
	StatMatchesPlayed,
	StatWins,
	StatLosses,
	StatGoals,
	StatOwnGoals,
	StatShots,
}

func StatFields() []StatField {
	out := make([]StatField, len(statFields))
	copy(out, statFields)
	return out
}

func ParseStatField(s string) (StatField, bool) {
	for _, f := range statFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Value returns the counter named by f, or 0 for an unknown field.
func (p *PlayerRecord) Value(f StatField) int {
	switch f {
	case StatMatchesPlayed:
		return p.MatchesPlayed
	case StatWins:
		return p.Wins
	case StatLosses:
		return p.Losses
	case StatGoals:
		return p.Goals
	case StatOwnGoals:
		return p.OwnGoals
	case StatShots:
		return p.Shots
	}
	return 0
}

func (p *PlayerRecord) counter(f StatField) *int {
	switch f {
	case StatMatchesPlayed:
		return &p.MatchesPlayed
	case StatWins:
		return &p.Wins
	case StatLosses:
		return &p.Losses
	case StatGoals:
		return &p.Goals
	case StatOwnGoals:
		return &p.OwnGoals
	case StatShots:
		return &p.Shots
	}
	return nil
}

// Add increases the counter named by f. Counters never decrease, so a
// non-positive amount or unknown field is rejected.
func (p *PlayerRecord) Add(f StatField, amount int) bool {
	c := p.counter(f)
	if c == nil || amount <= 0 {
		return false
	}
	*c += amount
	return true
}
