package memory

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strconv"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
)

const candidateDrawAttempts = 10

// CandidateGenerator draws candidate squads from the stored catalog. It
// stands in for the remote generator in dev and test environments; like the
// real one its output is untrusted and gets replayed through the squad rules
// before reaching a session.
type CandidateGenerator struct {
	athletes athlete.Repository
	rules    draft.Rules
}

func NewCandidateGenerator(athletes athlete.Repository, rules draft.Rules) *CandidateGenerator {
	return &CandidateGenerator{athletes: athletes, rules: rules}
}

// Generate draws a full squad seeded by user and gameweek, so repeated calls
// for the same pair return the same candidate. It retries a handful of draws
// to land under the budget cap and otherwise returns the cheapest draw seen.
func (g *CandidateGenerator) Generate(ctx context.Context, userID string, gameweekID int) (draft.Snapshot, error) {
	catalog, err := g.athletes.List(ctx)
	if err != nil {
		return draft.Snapshot{}, err
	}

	byPosition := make(map[athlete.Position][]athlete.Athlete)
	for _, a := range catalog {
		byPosition[a.Position] = append(byPosition[a.Position], a)
	}

	rng := rand.New(rand.NewSource(drawSeed(userID, gameweekID)))

	var (
		best      []athlete.Athlete
		bestTotal int64 = -1
	)
	for attempt := 0; attempt < candidateDrawAttempts; attempt++ {
		picks, err := g.draw(rng, byPosition)
		if err != nil {
			return draft.Snapshot{}, err
		}

		var total int64
		for _, a := range picks {
			total += a.Cost
		}
		if bestTotal < 0 || total < bestTotal {
			best, bestTotal = picks, total
		}
		if bestTotal <= g.rules.BudgetCap {
			break
		}
	}

	return g.snapshotOf(best, gameweekID), nil
}

func (g *CandidateGenerator) draw(rng *rand.Rand, byPosition map[athlete.Position][]athlete.Athlete) ([]athlete.Athlete, error) {
	picks := make([]athlete.Athlete, 0, g.rules.SquadSize)
	perTeam := make(map[string]int)

	var leftovers []athlete.Athlete
	for _, pos := range athlete.AllPositions {
		pool := append([]athlete.Athlete(nil), byPosition[pos]...)
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		need := g.rules.MinPerPosition[pos]
		taken := 0
		for _, a := range pool {
			if taken == need || perTeam[a.TeamID] >= g.rules.MaxPerTeam {
				leftovers = append(leftovers, a)
				continue
			}
			picks = append(picks, a)
			perTeam[a.TeamID]++
			taken++
		}
		if taken < need {
			return nil, fmt.Errorf("catalog cannot fill position %s: need %d, have %d", pos, need, taken)
		}
	}

	rng.Shuffle(len(leftovers), func(i, j int) { leftovers[i], leftovers[j] = leftovers[j], leftovers[i] })
	for _, a := range leftovers {
		if len(picks) == g.rules.SquadSize {
			break
		}
		if perTeam[a.TeamID] >= g.rules.MaxPerTeam {
			continue
		}
		picks = append(picks, a)
		perTeam[a.TeamID]++
	}
	if len(picks) < g.rules.SquadSize {
		return nil, fmt.Errorf("catalog cannot fill squad: need %d, have %d", g.rules.SquadSize, len(picks))
	}

	return picks, nil
}

func (g *CandidateGenerator) snapshotOf(picks []athlete.Athlete, gameweekID int) draft.Snapshot {
	athleteIDs := make([]string, 0, len(picks))
	for _, a := range picks {
		athleteIDs = append(athleteIDs, a.ID)
	}

	// Lineup composition beyond the starter count is unconstrained, so the
	// draw order decides who starts.
	starterCount := g.rules.StarterCount
	if starterCount > len(picks) {
		starterCount = len(picks)
	}
	starters := picks[:starterCount]

	starterIDs := make([]string, 0, len(starters))
	for _, a := range starters {
		starterIDs = append(starterIDs, a.ID)
	}

	// Armband goes to the two priciest starters.
	ranked := append([]athlete.Athlete(nil), starters...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Cost > ranked[j].Cost })

	var captainID, viceCaptainID string
	if len(ranked) > 0 {
		captainID = ranked[0].ID
	}
	if len(ranked) > 1 {
		viceCaptainID = ranked[1].ID
	}

	return draft.Snapshot{
		GameweekID:    gameweekID,
		AthleteIDs:    athleteIDs,
		StarterIDs:    starterIDs,
		CaptainID:     captainID,
		ViceCaptainID: viceCaptainID,
	}
}

func drawSeed(userID string, gameweekID int) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(gameweekID)))
	return int64(h.Sum64())
}
