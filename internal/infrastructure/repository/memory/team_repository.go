package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/squad-builder/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items []team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make([]team.Team, 0, len(teams))
	items = append(items, teams...)

	return &TeamRepository{items: items}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))
	out = append(out, r.items...)

	return out, nil
}

func (r *TeamRepository) Upsert(_ context.Context, teams []team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range teams {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}

		updated := false
		for idx := range r.items {
			if r.items[idx].ID == item.ID {
				r.items[idx] = item
				updated = true
				break
			}
		}
		if !updated {
			r.items = append(r.items, item)
		}
	}

	return nil
}
