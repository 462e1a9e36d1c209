package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	"github.com/riskibarqy/squad-builder/internal/domain/team"
	basecache "github.com/riskibarqy/squad-builder/internal/platform/cache"
)

type AthleteRepository struct {
	next  athlete.Repository
	cache *basecache.Store
}

func NewAthleteRepository(next athlete.Repository, cache *basecache.Store) *AthleteRepository {
	return &AthleteRepository{next: next, cache: cache}
}

func (r *AthleteRepository) List(ctx context.Context) ([]athlete.Athlete, error) {
	v, err := r.cache.GetOrLoad(ctx, "athlete:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]athlete.Athlete(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]athlete.Athlete)
	return append([]athlete.Athlete(nil), items...), nil
}

func (r *AthleteRepository) GetByIDs(ctx context.Context, athleteIDs []string) ([]athlete.Athlete, error) {
	ids := append([]string(nil), athleteIDs...)
	sort.Strings(ids)
	key := "athlete:ids:" + strings.Join(ids, ",")
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.GetByIDs(ctx, athleteIDs)
		if err != nil {
			return nil, err
		}
		return append([]athlete.Athlete(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]athlete.Athlete)
	return append([]athlete.Athlete(nil), items...), nil
}

func (r *AthleteRepository) Upsert(ctx context.Context, athletes []athlete.Athlete) error {
	if err := r.next.Upsert(ctx, athletes); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "athlete:")
	return nil
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) Upsert(ctx context.Context, teams []team.Team) error {
	if err := r.next.Upsert(ctx, teams); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "team:")
	return nil
}

type SquadRepository struct {
	next  draft.Repository
	cache *basecache.Store
}

func NewSquadRepository(next draft.Repository, cache *basecache.Store) *SquadRepository {
	return &SquadRepository{next: next, cache: cache}
}

func (r *SquadRepository) GetByUserAndGameweek(ctx context.Context, userID string, gameweekID int) (draft.Record, bool, error) {
	key := squadKey(userID, gameweekID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByUserAndGameweek(ctx, userID, gameweekID)
		if err != nil {
			return nil, err
		}
		return cachedSquadByUserGameweek{
			value:  cloneRecord(item),
			exists: exists,
		}, nil
	})
	if err != nil {
		return draft.Record{}, false, err
	}

	cached, _ := v.(cachedSquadByUserGameweek)
	return cloneRecord(cached.value), cached.exists, nil
}

func (r *SquadRepository) ListByGameweek(ctx context.Context, gameweekID int) ([]draft.Record, error) {
	key := "squad:list:gameweek:" + strconv.Itoa(gameweekID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByGameweek(ctx, gameweekID)
		if err != nil {
			return nil, err
		}
		out := make([]draft.Record, 0, len(items))
		for _, item := range items {
			out = append(out, cloneRecord(item))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]draft.Record)
	out := make([]draft.Record, 0, len(items))
	for _, item := range items {
		out = append(out, cloneRecord(item))
	}
	return out, nil
}

func (r *SquadRepository) Create(ctx context.Context, record draft.Record) error {
	if err := r.next.Create(ctx, record); err != nil {
		return err
	}
	r.invalidate(ctx, record)
	return nil
}

func (r *SquadRepository) Update(ctx context.Context, record draft.Record) error {
	if err := r.next.Update(ctx, record); err != nil {
		return err
	}
	r.invalidate(ctx, record)
	return nil
}

func (r *SquadRepository) invalidate(ctx context.Context, record draft.Record) {
	r.cache.Delete(ctx, squadKey(record.UserID, record.GameweekID))
	r.cache.Delete(ctx, "squad:list:gameweek:"+strconv.Itoa(record.GameweekID))
}

type cachedSquadByUserGameweek struct {
	value  draft.Record
	exists bool
}

func cloneRecord(item draft.Record) draft.Record {
	out := item
	out.AthleteIDs = append([]string(nil), item.AthleteIDs...)
	out.StarterIDs = append([]string(nil), item.StarterIDs...)
	return out
}

func squadKey(userID string, gameweekID int) string {
	return "squad:user:" + userID + ":gameweek:" + strconv.Itoa(gameweekID)
}
