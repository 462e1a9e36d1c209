package athlete

import "fmt"

// Position is the stable integer code for an athlete's position class. The
// codes are part of the wire format and must not be renumbered.
type Position int

const (
	PositionKeeper     Position = 1
	PositionDefender   Position = 2
	PositionMidfielder Position = 3
	PositionForward    Position = 4
)

// AllPositions lists every position class in code order.
var AllPositions = []Position{
	PositionKeeper,
	PositionDefender,
	PositionMidfielder,
	PositionForward,
}

func (p Position) Valid() bool {
	return p >= PositionKeeper && p <= PositionForward
}

func (p Position) String() string {
	switch p {
	case PositionKeeper:
		return "GK"
	case PositionDefender:
		return "DEF"
	case PositionMidfielder:
		return "MID"
	case PositionForward:
		return "FWD"
	default:
		return fmt.Sprintf("POS(%d)", int(p))
	}
}

// Athlete is a selectable entry in the gameweek catalog. Cost is held in
// tenths of the display unit, so 55 means 5.5.
type Athlete struct {
	ID       string
	TeamID   string
	Name     string
	Position Position
	Cost     int64
}

func (a Athlete) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("athlete id is required")
	}
	if a.TeamID == "" {
		return fmt.Errorf("athlete team id is required")
	}
	if a.Name == "" {
		return fmt.Errorf("athlete name is required")
	}
	if !a.Position.Valid() {
		return fmt.Errorf("invalid athlete position: %d", a.Position)
	}
	if a.Cost <= 0 {
		return fmt.Errorf("athlete cost must be greater than zero")
	}

	return nil
}
