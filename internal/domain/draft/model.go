package draft

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
)

// Structural rejections returned by builder transitions. A rejected transition
// leaves the squad untouched; these are not validation violations.
var (
	ErrSquadFull       = errors.New("squad is full")
	ErrAlreadySelected = errors.New("athlete already selected")
	ErrLineupFull      = errors.New("starting lineup is full")
	ErrAlreadyStarter  = errors.New("athlete already in starting lineup")
	ErrNotSelected     = errors.New("athlete not in squad")
	ErrNotStarter      = errors.New("athlete not in starting lineup")
)

// Squad is one user's in-progress draft for a gameweek. All edits go through
// the transition methods below; each either applies fully or rejects and
// leaves the state unchanged, so cardinality and referential invariants hold
// between any two calls. Budget and position rules are deliberately not
// enforced here; they are checked by Validate so users can build through
// temporarily over-budget states.
type Squad struct {
	gameweekID int
	rules      Rules

	selected map[string]athlete.Athlete
	order    []string
	starters map[string]struct{}

	captainID     string
	viceCaptainID string
}

func NewSquad(gameweekID int, rules Rules) *Squad {
	return &Squad{
		gameweekID: gameweekID,
		rules:      rules,
		selected:   make(map[string]athlete.Athlete),
		starters:   make(map[string]struct{}),
	}
}

func (s *Squad) GameweekID() int { return s.gameweekID }

func (s *Squad) Rules() Rules { return s.rules }

// Add puts an athlete into the selection. It rejects a duplicate pick and a
// pick beyond the squad size; cost and club quota are not checked here.
func (s *Squad) Add(a athlete.Athlete) error {
	if _, ok := s.selected[a.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySelected, a.ID)
	}
	if len(s.selected) >= s.rules.SquadSize {
		return fmt.Errorf("%w: %d athletes max", ErrSquadFull, s.rules.SquadSize)
	}

	s.selected[a.ID] = a
	s.order = append(s.order, a.ID)
	return nil
}

// Remove drops an athlete from the selection. Removing an athlete that is not
// selected is a no-op. A removed starter leaves the lineup, and a removed
// captain or vice-captain loses the role.
func (s *Squad) Remove(athleteID string) {
	if _, ok := s.selected[athleteID]; !ok {
		return
	}

	delete(s.selected, athleteID)
	for i, id := range s.order {
		if id == athleteID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.starters, athleteID)
	if s.captainID == athleteID {
		s.captainID = ""
	}
	if s.viceCaptainID == athleteID {
		s.viceCaptainID = ""
	}
}

// Promote moves a selected athlete into the starting lineup.
func (s *Squad) Promote(athleteID string) error {
	if _, ok := s.selected[athleteID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotSelected, athleteID)
	}
	if _, ok := s.starters[athleteID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyStarter, athleteID)
	}
	if len(s.starters) >= s.rules.StarterCount {
		return fmt.Errorf("%w: %d starters max", ErrLineupFull, s.rules.StarterCount)
	}

	s.starters[athleteID] = struct{}{}
	return nil
}

// Demote moves a starter back to the bench. Demoting a non-starter is a
// no-op. A demoted captain or vice-captain loses the role.
func (s *Squad) Demote(athleteID string) {
	if _, ok := s.starters[athleteID]; !ok {
		return
	}

	delete(s.starters, athleteID)
	if s.captainID == athleteID {
		s.captainID = ""
	}
	if s.viceCaptainID == athleteID {
		s.viceCaptainID = ""
	}
}

// SetCaptain assigns the captaincy to a starter. If the athlete currently
// holds the vice-captaincy, that role is cleared so the two never coincide.
func (s *Squad) SetCaptain(athleteID string) error {
	if _, ok := s.starters[athleteID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotStarter, athleteID)
	}

	if s.viceCaptainID == athleteID {
		s.viceCaptainID = ""
	}
	s.captainID = athleteID
	return nil
}

// SetViceCaptain assigns the vice-captaincy to a starter. If the athlete
// currently holds the captaincy, that role is cleared.
func (s *Squad) SetViceCaptain(athleteID string) error {
	if _, ok := s.starters[athleteID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotStarter, athleteID)
	}

	if s.captainID == athleteID {
		s.captainID = ""
	}
	s.viceCaptainID = athleteID
	return nil
}

func (s *Squad) Has(athleteID string) bool {
	_, ok := s.selected[athleteID]
	return ok
}

func (s *Squad) IsStarter(athleteID string) bool {
	_, ok := s.starters[athleteID]
	return ok
}

func (s *Squad) Size() int { return len(s.selected) }

func (s *Squad) StarterCount() int { return len(s.starters) }

func (s *Squad) CaptainID() string { return s.captainID }

func (s *Squad) ViceCaptainID() string { return s.viceCaptainID }

// Selected returns the picked athletes in selection order.
func (s *Squad) Selected() []athlete.Athlete {
	out := make([]athlete.Athlete, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.selected[id])
	}
	return out
}

// StarterIDs returns the starting lineup in selection order.
func (s *Squad) StarterIDs() []string {
	out := make([]string, 0, len(s.starters))
	for _, id := range s.order {
		if _, ok := s.starters[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Summary is a derived view of the draft. It is recomputed on demand and
// never stored.
type Summary struct {
	Size            int
	StarterCount    int
	TotalCost       int64
	RemainingBudget int64
	CountByPosition map[athlete.Position]int
}

func (s *Squad) Summary() Summary {
	summary := Summary{
		Size:            len(s.selected),
		StarterCount:    len(s.starters),
		CountByPosition: make(map[athlete.Position]int, len(athlete.AllPositions)),
	}
	for _, a := range s.selected {
		summary.TotalCost += a.Cost
		summary.CountByPosition[a.Position]++
	}
	summary.RemainingBudget = s.rules.BudgetCap - summary.TotalCost
	return summary
}

// Validate runs the full rule set against the current state.
func (s *Squad) Validate() Report {
	return Validate(s.Selected(), s.StarterIDs(), s.rules)
}

// ValidateForCommit runs the full rule set plus the commit-only requirement
// that both leadership roles are assigned.
func (s *Squad) ValidateForCommit() Report {
	return ValidateForCommit(s.Selected(), s.StarterIDs(), s.captainID, s.viceCaptainID, s.rules)
}
