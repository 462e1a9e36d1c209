package draft

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
)

// Violation categories reported by Validate. Every violation in a Report
// wraps one of these so callers can classify with errors.Is.
var (
	ErrSquadSize            = errors.New("invalid squad size")
	ErrDuplicateAthlete     = errors.New("duplicate athlete in squad")
	ErrStarterCount         = errors.New("invalid starter count")
	ErrUnknownStarter       = errors.New("starter not in squad")
	ErrExceededBudget       = errors.New("budget cap exceeded")
	ErrInsufficientPosition = errors.New("minimum position requirement not met")
	ErrExceededTeamLimit    = errors.New("max athletes from same team exceeded")
	ErrMissingCaptain       = errors.New("captain is required")
	ErrMissingViceCaptain   = errors.New("vice-captain is required")
)

// Rules stores squad composition parameters. BudgetCap is held in tenths of
// the display unit.
type Rules struct {
	SquadSize      int
	StarterCount   int
	BudgetCap      int64
	MaxPerTeam     int
	MinPerPosition map[athlete.Position]int
}

// DefaultRules returns the standard format: 15 athletes, 11 starters, a 100.0
// budget cap, at most 3 athletes per club, and position minimums that sum to
// the squad size so the distribution is pinned exactly.
func DefaultRules() Rules {
	return Rules{
		SquadSize:    15,
		StarterCount: 11,
		BudgetCap:    1000,
		MaxPerTeam:   3,
		MinPerPosition: map[athlete.Position]int{
			athlete.PositionKeeper:     2,
			athlete.PositionDefender:   5,
			athlete.PositionMidfielder: 5,
			athlete.PositionForward:    3,
		},
	}
}

// Report is the outcome of validating a draft. Violations keep the order the
// checks run in, so rendered reports are stable across calls.
type Report struct {
	Violations []error
}

func (r Report) IsValid() bool { return len(r.Violations) == 0 }

func (r Report) Err() error { return errors.Join(r.Violations...) }

// Messages renders every violation for transport.
func (r Report) Messages() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Error())
	}
	return out
}

// Validate checks a selection against every squad rule and reports all
// violations at once. It never stops at the first failure, never mutates its
// inputs, and returns the same report for the same state.
func Validate(selected []athlete.Athlete, starterIDs []string, rules Rules) Report {
	var violations []error

	if len(selected) != rules.SquadSize {
		violations = append(violations, fmt.Errorf("%w: expected %d, got %d", ErrSquadSize, rules.SquadSize, len(selected)))
	}

	selectedByID := make(map[string]athlete.Athlete, len(selected))
	for _, a := range selected {
		if _, exists := selectedByID[a.ID]; exists {
			violations = append(violations, fmt.Errorf("%w: %s", ErrDuplicateAthlete, a.ID))
			continue
		}
		selectedByID[a.ID] = a
	}

	if len(starterIDs) != rules.StarterCount {
		violations = append(violations, fmt.Errorf("%w: expected %d, got %d", ErrStarterCount, rules.StarterCount, len(starterIDs)))
	}
	for _, id := range starterIDs {
		if _, ok := selectedByID[id]; !ok {
			violations = append(violations, fmt.Errorf("%w: %s", ErrUnknownStarter, id))
		}
	}

	var totalCost int64
	positionCounter := make(map[athlete.Position]int, len(athlete.AllPositions))
	teamCounter := make(map[string]int)
	for _, a := range selectedByID {
		totalCost += a.Cost
		positionCounter[a.Position]++
		teamCounter[a.TeamID]++
	}

	if totalCost > rules.BudgetCap {
		violations = append(violations, fmt.Errorf("%w: total=%s cap=%s", ErrExceededBudget, formatTenths(totalCost), formatTenths(rules.BudgetCap)))
	}

	for _, pos := range athlete.AllPositions {
		minRequired := rules.MinPerPosition[pos]
		if minRequired > 0 && positionCounter[pos] < minRequired {
			violations = append(violations, fmt.Errorf("%w: pos=%s min=%d current=%d", ErrInsufficientPosition, pos, minRequired, positionCounter[pos]))
		}
	}

	teamIDs := make([]string, 0, len(teamCounter))
	for teamID := range teamCounter {
		teamIDs = append(teamIDs, teamID)
	}
	sort.Strings(teamIDs)
	for _, teamID := range teamIDs {
		if teamCounter[teamID] > rules.MaxPerTeam {
			violations = append(violations, fmt.Errorf("%w: team=%s count=%d max=%d", ErrExceededTeamLimit, teamID, teamCounter[teamID], rules.MaxPerTeam))
		}
	}

	return Report{Violations: violations}
}

// ValidateForCommit runs Validate plus the commit-only requirement that both
// leadership roles are assigned. Missing roles are validation violations, not
// structural rejections, so drafts stay editable before committing.
func ValidateForCommit(selected []athlete.Athlete, starterIDs []string, captainID, viceCaptainID string, rules Rules) Report {
	report := Validate(selected, starterIDs, rules)
	if captainID == "" {
		report.Violations = append(report.Violations, ErrMissingCaptain)
	}
	if viceCaptainID == "" {
		report.Violations = append(report.Violations, ErrMissingViceCaptain)
	}
	return report
}

// formatTenths renders an amount held in tenths using display units, dropping
// the fraction when it is zero: 1012 renders "101.2", 1000 renders "100".
func formatTenths(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v%10 == 0 {
		return sign + strconv.FormatInt(v/10, 10)
	}
	return fmt.Sprintf("%s%d.%d", sign, v/10, v%10)
}
