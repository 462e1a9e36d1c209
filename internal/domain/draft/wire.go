package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
)

// ErrUnresolvedAthlete marks a snapshot that references an athlete id missing
// from the catalog. The whole snapshot is rejected; a partially resolved
// draft is never produced.
var ErrUnresolvedAthlete = errors.New("athlete id not in catalog")

// Snapshot is the wire form of a draft: gameweek plus athlete ids only.
// Athletes are resolved against the catalog when the snapshot is loaded, so a
// snapshot stays valid across catalog price or name updates.
type Snapshot struct {
	GameweekID    int
	AthleteIDs    []string
	StarterIDs    []string
	CaptainID     string
	ViceCaptainID string
}

// ReferencedIDs returns every distinct athlete id the snapshot mentions, in
// first-mention order.
func (s Snapshot) ReferencedIDs() []string {
	seen := make(map[string]struct{}, len(s.AthleteIDs))
	out := make([]string, 0, len(s.AthleteIDs))

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, id := range s.AthleteIDs {
		add(id)
	}
	for _, id := range s.StarterIDs {
		add(id)
	}
	add(s.CaptainID)
	add(s.ViceCaptainID)

	return out
}

// Snapshot captures the squad's wire form.
func (s *Squad) Snapshot() Snapshot {
	return Snapshot{
		GameweekID:    s.gameweekID,
		AthleteIDs:    append([]string(nil), s.order...),
		StarterIDs:    s.StarterIDs(),
		CaptainID:     s.captainID,
		ViceCaptainID: s.viceCaptainID,
	}
}

// FromSnapshot rebuilds a squad from its wire form. Every referenced id must
// resolve through the given catalog entries; any miss rejects the snapshot
// with ErrUnresolvedAthlete listing the dangling ids. A snapshot that breaks
// transition rules (duplicate pick, oversized lineup, captain outside the
// lineup) is rejected with the transition error.
func FromSnapshot(snap Snapshot, catalog map[string]athlete.Athlete, rules Rules) (*Squad, error) {
	var missing []string
	for _, id := range snap.ReferencedIDs() {
		if _, ok := catalog[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedAthlete, strings.Join(missing, ", "))
	}

	squad := NewSquad(snap.GameweekID, rules)
	for _, id := range snap.AthleteIDs {
		if err := squad.Add(catalog[id]); err != nil {
			return nil, err
		}
	}
	for _, id := range snap.StarterIDs {
		if err := squad.Promote(id); err != nil {
			return nil, err
		}
	}
	if snap.CaptainID != "" {
		if err := squad.SetCaptain(snap.CaptainID); err != nil {
			return nil, err
		}
	}
	if snap.ViceCaptainID != "" {
		if err := squad.SetViceCaptain(snap.ViceCaptainID); err != nil {
			return nil, err
		}
	}

	return squad, nil
}
