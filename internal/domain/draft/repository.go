package draft

import (
	"context"
	"fmt"
	"time"
)

// Record is a committed squad as stored by the persistence gateway.
type Record struct {
	ID            string
	UserID        string
	GameweekID    int
	AthleteIDs    []string
	StarterIDs    []string
	CaptainID     string
	ViceCaptainID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r Record) ValidateBasic() error {
	if r.ID == "" {
		return fmt.Errorf("record id is required")
	}
	if r.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if r.GameweekID <= 0 {
		return fmt.Errorf("gameweek id must be greater than zero")
	}
	if len(r.AthleteIDs) == 0 {
		return fmt.Errorf("athlete ids are required")
	}

	return nil
}

// Snapshot converts the record to the wire form used by sessions.
func (r Record) Snapshot() Snapshot {
	return Snapshot{
		GameweekID:    r.GameweekID,
		AthleteIDs:    append([]string(nil), r.AthleteIDs...),
		StarterIDs:    append([]string(nil), r.StarterIDs...),
		CaptainID:     r.CaptainID,
		ViceCaptainID: r.ViceCaptainID,
	}
}

// Repository describes committed squad persistence needs from use cases.
// GetByUserAndGameweek reports absence as (zero, false, nil); commit decides
// create-vs-update by probing it. Concurrent commits for the same user and
// gameweek are last-write-wins.
type Repository interface {
	GetByUserAndGameweek(ctx context.Context, userID string, gameweekID int) (Record, bool, error)
	Create(ctx context.Context, record Record) error
	Update(ctx context.Context, record Record) error
	ListByGameweek(ctx context.Context, gameweekID int) ([]Record, error)
}

// CandidateGenerator produces machine-generated draft candidates as id sets.
// Candidates are not trusted to satisfy squad rules; callers resolve and
// validate them like any other draft.
type CandidateGenerator interface {
	Generate(ctx context.Context, userID string, gameweekID int) (Snapshot, error)
}
