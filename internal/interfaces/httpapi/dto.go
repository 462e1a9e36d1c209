package httpapi

import (
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	"github.com/riskibarqy/squad-builder/internal/domain/team"
	"github.com/riskibarqy/squad-builder/internal/usecase"
)

type openDraftRequest struct {
	Fresh bool `json:"fresh"`
}

type draftAthleteRequest struct {
	AthleteID string `json:"athleteId" validate:"required"`
}

type revalidateRequest struct {
	GameweekID int `json:"gameweekId" validate:"required,gt=0"`
	MaxWorkers int `json:"maxWorkers" validate:"omitempty,gte=0"`
}

type teamDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Short string `json:"short"`
}

// athleteDTO carries the stable position code plus its display label.
type athleteDTO struct {
	ID           string `json:"id"`
	TeamID       string `json:"teamId"`
	Name         string `json:"name"`
	Position     int    `json:"position"`
	PositionName string `json:"positionName"`
	Cost         int64  `json:"cost"`
}

type draftAthleteDTO struct {
	athleteDTO
	IsStarter     bool `json:"isStarter"`
	IsCaptain     bool `json:"isCaptain"`
	IsViceCaptain bool `json:"isViceCaptain"`
}

type draftSummaryDTO struct {
	Size            int            `json:"size"`
	StarterCount    int            `json:"starterCount"`
	TotalCost       int64          `json:"totalCost"`
	RemainingBudget int64          `json:"remainingBudget"`
	CountByPosition map[string]int `json:"countByPosition"`
}

type draftDTO struct {
	GameweekID    int               `json:"gameweekId"`
	Athletes      []draftAthleteDTO `json:"athletes"`
	StarterIDs    []string          `json:"starterIds"`
	CaptainID     string            `json:"captainId,omitempty"`
	ViceCaptainID string            `json:"viceCaptainId,omitempty"`
	Summary       draftSummaryDTO   `json:"summary"`
}

type validationReportDTO struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

type committedSquadDTO struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	GameweekID    int      `json:"gameweekId"`
	AthleteIDs    []string `json:"athleteIds"`
	StarterIDs    []string `json:"starterIds"`
	CaptainID     string   `json:"captainId"`
	ViceCaptainID string   `json:"viceCaptainId"`
	CreatedAtUTC  string   `json:"createdAtUtc"`
	UpdatedAtUTC  string   `json:"updatedAtUtc"`
}

type syncReportDTO struct {
	Teams           int `json:"teams"`
	Athletes        int `json:"athletes"`
	SkippedTeams    int `json:"skippedTeams"`
	SkippedAthletes int `json:"skippedAthletes"`
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:    v.ID,
		Name:  v.Name,
		Short: v.Short,
	}
}

func athleteToDTO(v athlete.Athlete) athleteDTO {
	return athleteDTO{
		ID:           v.ID,
		TeamID:       v.TeamID,
		Name:         v.Name,
		Position:     int(v.Position),
		PositionName: v.Position.String(),
		Cost:         v.Cost,
	}
}

func draftViewToDTO(view usecase.DraftView) draftDTO {
	snap := view.Snapshot

	starters := make(map[string]struct{}, len(snap.StarterIDs))
	for _, id := range snap.StarterIDs {
		starters[id] = struct{}{}
	}

	athletes := make([]draftAthleteDTO, 0, len(view.Selected))
	for _, item := range view.Selected {
		_, isStarter := starters[item.ID]
		athletes = append(athletes, draftAthleteDTO{
			athleteDTO:    athleteToDTO(item),
			IsStarter:     isStarter,
			IsCaptain:     item.ID == snap.CaptainID,
			IsViceCaptain: item.ID == snap.ViceCaptainID,
		})
	}

	return draftDTO{
		GameweekID:    snap.GameweekID,
		Athletes:      athletes,
		StarterIDs:    snap.StarterIDs,
		CaptainID:     snap.CaptainID,
		ViceCaptainID: snap.ViceCaptainID,
		Summary:       summaryToDTO(view.Summary),
	}
}

func summaryToDTO(s draft.Summary) draftSummaryDTO {
	counts := make(map[string]int, len(athlete.AllPositions))
	for _, pos := range athlete.AllPositions {
		counts[pos.String()] = s.CountByPosition[pos]
	}

	return draftSummaryDTO{
		Size:            s.Size,
		StarterCount:    s.StarterCount,
		TotalCost:       s.TotalCost,
		RemainingBudget: s.RemainingBudget,
		CountByPosition: counts,
	}
}

func reportToDTO(report draft.Report) validationReportDTO {
	return validationReportDTO{
		Valid:      report.IsValid(),
		Violations: report.Messages(),
	}
}

func committedSquadToDTO(record draft.Record) committedSquadDTO {
	return committedSquadDTO{
		ID:            record.ID,
		UserID:        record.UserID,
		GameweekID:    record.GameweekID,
		AthleteIDs:    record.AthleteIDs,
		StarterIDs:    record.StarterIDs,
		CaptainID:     record.CaptainID,
		ViceCaptainID: record.ViceCaptainID,
		CreatedAtUTC:  record.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC:  record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func syncReportToDTO(report usecase.SyncReport) syncReportDTO {
	return syncReportDTO{
		Teams:           report.Teams,
		Athletes:        report.Athletes,
		SkippedTeams:    report.SkippedTeams,
		SkippedAthletes: report.SkippedAthletes,
	}
}
