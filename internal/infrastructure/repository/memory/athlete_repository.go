package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
)

type AthleteRepository struct {
	mu    sync.RWMutex
	items []athlete.Athlete
	index map[string]athlete.Athlete
}

func NewAthleteRepository(athletes []athlete.Athlete) *AthleteRepository {
	items := make([]athlete.Athlete, 0, len(athletes))
	index := make(map[string]athlete.Athlete, len(athletes))

	for _, a := range athletes {
		items = append(items, a)
		index[a.ID] = a
	}

	return &AthleteRepository{items: items, index: index}
}

func (r *AthleteRepository) List(_ context.Context) ([]athlete.Athlete, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]athlete.Athlete, 0, len(r.items))
	out = append(out, r.items...)

	return out, nil
}

func (r *AthleteRepository) GetByIDs(_ context.Context, athleteIDs []string) ([]athlete.Athlete, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]athlete.Athlete, 0, len(athleteIDs))
	for _, id := range athleteIDs {
		a, ok := r.index[id]
		if !ok {
			continue
		}
		out = append(out, a)
	}

	return out, nil
}

func (r *AthleteRepository) Upsert(_ context.Context, athletes []athlete.Athlete) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range athletes {
		if strings.TrimSpace(a.ID) == "" {
			continue
		}

		if _, ok := r.index[a.ID]; ok {
			for idx := range r.items {
				if r.items[idx].ID == a.ID {
					r.items[idx] = a
					break
				}
			}
		} else {
			r.items = append(r.items, a)
		}
		r.index[a.ID] = a
	}

	return nil
}
