package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/riskibarqy/squad-builder/internal/domain/draft"
)

type SquadRepository struct {
	mu    sync.RWMutex
	items map[string]draft.Record
}

func NewSquadRepository() *SquadRepository {
	return &SquadRepository{items: make(map[string]draft.Record)}
}

func (r *SquadRepository) GetByUserAndGameweek(_ context.Context, userID string, gameweekID int) (draft.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[recordKey(userID, gameweekID)]
	if !ok {
		return draft.Record{}, false, nil
	}

	return cloneRecord(record), true, nil
}

func (r *SquadRepository) Create(_ context.Context, record draft.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey(record.UserID, record.GameweekID)
	if _, ok := r.items[key]; ok {
		return fmt.Errorf("squad already exists: user=%s gameweek=%d", record.UserID, record.GameweekID)
	}

	r.items[key] = cloneRecord(record)
	return nil
}

func (r *SquadRepository) Update(_ context.Context, record draft.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey(record.UserID, record.GameweekID)
	if _, ok := r.items[key]; !ok {
		return fmt.Errorf("squad does not exist: user=%s gameweek=%d", record.UserID, record.GameweekID)
	}

	r.items[key] = cloneRecord(record)
	return nil
}

func (r *SquadRepository) ListByGameweek(_ context.Context, gameweekID int) ([]draft.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]draft.Record, 0)
	for _, record := range r.items {
		if record.GameweekID != gameweekID {
			continue
		}
		out = append(out, cloneRecord(record))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

func recordKey(userID string, gameweekID int) string {
	return userID + "::" + strconv.Itoa(gameweekID)
}

func cloneRecord(record draft.Record) draft.Record {
	copied := record
	copied.AthleteIDs = append([]string(nil), record.AthleteIDs...)
	copied.StarterIDs = append([]string(nil), record.StarterIDs...)
	return copied
}
