package draft

import (
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
)

func validSelection() []athlete.Athlete {
	return []athlete.Athlete{
		{ID: "a1", TeamID: "t1", Name: "A1", Position: athlete.PositionKeeper, Cost: 60},
		{ID: "a2", TeamID: "t2", Name: "A2", Position: athlete.PositionKeeper, Cost: 60},
		{ID: "a3", TeamID: "t3", Name: "A3", Position: athlete.PositionDefender, Cost: 60},
		{ID: "a4", TeamID: "t4", Name: "A4", Position: athlete.PositionDefender, Cost: 60},
		{ID: "a5", TeamID: "t5", Name: "A5", Position: athlete.PositionDefender, Cost: 60},
		{ID: "a6", TeamID: "t1", Name: "A6", Position: athlete.PositionDefender, Cost: 60},
		{ID: "a7", TeamID: "t2", Name: "A7", Position: athlete.PositionDefender, Cost: 60},
		{ID: "a8", TeamID: "t3", Name: "A8", Position: athlete.PositionMidfielder, Cost: 60},
		{ID: "a9", TeamID: "t4", Name: "A9", Position: athlete.PositionMidfielder, Cost: 60},
		{ID: "a10", TeamID: "t5", Name: "A10", Position: athlete.PositionMidfielder, Cost: 60},
		{ID: "a11", TeamID: "t1", Name: "A11", Position: athlete.PositionMidfielder, Cost: 60},
		{ID: "a12", TeamID: "t2", Name: "A12", Position: athlete.PositionMidfielder, Cost: 60},
		{ID: "a13", TeamID: "t3", Name: "A13", Position: athlete.PositionForward, Cost: 60},
		{ID: "a14", TeamID: "t4", Name: "A14", Position: athlete.PositionForward, Cost: 60},
		{ID: "a15", TeamID: "t5", Name: "A15", Position: athlete.PositionForward, Cost: 60},
	}
}

func validStarterIDs() []string {
	return []string{"a1", "a3", "a4", "a5", "a6", "a8", "a9", "a10", "a11", "a13", "a14"}
}

func TestValidate(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		mutate    func(selected *[]athlete.Athlete, starters *[]string, cfg *Rules)
		targetErr error
	}{
		{
			name: "valid squad",
			mutate: func(_ *[]athlete.Athlete, _ *[]string, _ *Rules) {
			},
			targetErr: nil,
		},
		{
			name: "squad too small",
			mutate: func(selected *[]athlete.Athlete, starters *[]string, _ *Rules) {
				*selected = (*selected)[:14]
				*starters = []string{"a1", "a3", "a4", "a5", "a6", "a8", "a9", "a10", "a11", "a13", "a14"}
			},
			targetErr: ErrSquadSize,
		},
		{
			name: "duplicate athlete",
			mutate: func(selected *[]athlete.Athlete, _ *[]string, _ *Rules) {
				(*selected)[1].ID = "a1"
			},
			targetErr: ErrDuplicateAthlete,
		},
		{
			name: "starter count short",
			mutate: func(_ *[]athlete.Athlete, starters *[]string, _ *Rules) {
				*starters = (*starters)[:10]
			},
			targetErr: ErrStarterCount,
		},
		{
			name: "starter outside squad",
			mutate: func(_ *[]athlete.Athlete, starters *[]string, _ *Rules) {
				(*starters)[0] = "ghost"
			},
			targetErr: ErrUnknownStarter,
		},
		{
			name: "budget exceeded",
			mutate: func(selected *[]athlete.Athlete, _ *[]string, _ *Rules) {
				(*selected)[0].Cost = 172
			},
			targetErr: ErrExceededBudget,
		},
		{
			name: "position minimum broken",
			mutate: func(selected *[]athlete.Athlete, _ *[]string, _ *Rules) {
				(*selected)[3].Position = athlete.PositionForward
			},
			targetErr: ErrInsufficientPosition,
		},
		{
			name: "team quota exceeded",
			mutate: func(selected *[]athlete.Athlete, _ *[]string, _ *Rules) {
				(*selected)[2].TeamID = "t1"
			},
			targetErr: ErrExceededTeamLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := validSelection()
			starters := validStarterIDs()
			cfg := rules
			tt.mutate(&selected, &starters, &cfg)

			report := Validate(selected, starters, cfg)
			if tt.targetErr == nil {
				if !report.IsValid() {
					t.Fatalf("expected valid squad, got violations %v", report.Messages())
				}
				if len(report.Violations) != 0 {
					t.Fatalf("expected zero violations, got %d", len(report.Violations))
				}
				return
			}

			if report.IsValid() {
				t.Fatalf("expected violation %v, got valid report", tt.targetErr)
			}
			if !errors.Is(report.Err(), tt.targetErr) {
				t.Fatalf("expected violation %v, got %v", tt.targetErr, report.Err())
			}
		})
	}
}

func TestValidateReportsAllViolationsAtOnce(t *testing.T) {
	selected := validSelection()[:14]
	starters := validStarterIDs()[:9]
	selected[0].Cost = 1200

	report := Validate(selected, starters, DefaultRules())

	for _, target := range []error{ErrSquadSize, ErrStarterCount, ErrExceededBudget, ErrInsufficientPosition} {
		if !errors.Is(report.Err(), target) {
			t.Fatalf("expected report to include %v, got %v", target, report.Messages())
		}
	}
}

func TestValidateSquadSizeMessageNamesCounts(t *testing.T) {
	selected := validSelection()[:14]

	report := Validate(selected, validStarterIDs(), DefaultRules())

	var sizeViolation error
	for _, v := range report.Violations {
		if errors.Is(v, ErrSquadSize) {
			sizeViolation = v
		}
	}
	if sizeViolation == nil {
		t.Fatalf("expected squad size violation, got %v", report.Messages())
	}
	if !strings.Contains(sizeViolation.Error(), "got 14") || !strings.Contains(sizeViolation.Error(), "expected 15") {
		t.Fatalf("expected counts in message, got %q", sizeViolation.Error())
	}
}

func TestValidateBudgetMessageNamesTotalAndCap(t *testing.T) {
	selected := validSelection()
	selected[0].Cost = 172 // lifts the total to 1012 against the 1000 cap

	report := Validate(selected, validStarterIDs(), DefaultRules())

	if len(report.Violations) != 1 {
		t.Fatalf("expected exactly one violation, got %v", report.Messages())
	}
	msg := report.Violations[0].Error()
	if !errors.Is(report.Violations[0], ErrExceededBudget) {
		t.Fatalf("expected budget violation, got %q", msg)
	}
	if !strings.Contains(msg, "101.2") || !strings.Contains(msg, "100") {
		t.Fatalf("expected total and cap in message, got %q", msg)
	}
}

func TestValidateTeamQuotaMessageNamesTeam(t *testing.T) {
	selected := validSelection()
	selected[2].TeamID = "t1"

	report := Validate(selected, validStarterIDs(), DefaultRules())

	if len(report.Violations) != 1 {
		t.Fatalf("expected exactly one violation, got %v", report.Messages())
	}
	msg := report.Violations[0].Error()
	if !strings.Contains(msg, "team=t1") || !strings.Contains(msg, "count=4") {
		t.Fatalf("expected team and count in message, got %q", msg)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	selected := validSelection()[:13]
	starters := validStarterIDs()[:8]
	rules := DefaultRules()

	first := Validate(selected, starters, rules)
	second := Validate(selected, starters, rules)

	if len(first.Violations) != len(second.Violations) {
		t.Fatalf("expected identical reports, got %d then %d violations", len(first.Violations), len(second.Violations))
	}
	for i := range first.Violations {
		if first.Violations[i].Error() != second.Violations[i].Error() {
			t.Fatalf("violation %d differs: %q vs %q", i, first.Violations[i].Error(), second.Violations[i].Error())
		}
	}
}

func TestValidateForCommitRequiresLeadershipRoles(t *testing.T) {
	selected := validSelection()
	starters := validStarterIDs()
	rules := DefaultRules()

	report := ValidateForCommit(selected, starters, "", "", rules)
	if !errors.Is(report.Err(), ErrMissingCaptain) || !errors.Is(report.Err(), ErrMissingViceCaptain) {
		t.Fatalf("expected missing role violations, got %v", report.Messages())
	}

	report = ValidateForCommit(selected, starters, "a1", "", rules)
	if errors.Is(report.Err(), ErrMissingCaptain) {
		t.Fatalf("captain is set, got %v", report.Messages())
	}
	if !errors.Is(report.Err(), ErrMissingViceCaptain) {
		t.Fatalf("expected missing vice-captain violation, got %v", report.Messages())
	}

	report = ValidateForCommit(selected, starters, "a1", "a3", rules)
	if !report.IsValid() {
		t.Fatalf("expected valid report, got %v", report.Messages())
	}
}

func TestFormatTenths(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{1000, "100"},
		{1012, "101.2"},
		{60, "6"},
		{55, "5.5"},
		{0, "0"},
		{-15, "-1.5"},
	}

	for _, tt := range tests {
		if got := formatTenths(tt.in); got != tt.want {
			t.Fatalf("formatTenths(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
