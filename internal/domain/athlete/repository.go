package athlete

import "context"

// Repository describes catalog persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Athlete, error)
	GetByIDs(ctx context.Context, athleteIDs []string) ([]Athlete, error)
	Upsert(ctx context.Context, athletes []Athlete) error
}
