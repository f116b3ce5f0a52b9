package canonical

import (
	"sort"
	"strings"

	"github.com/docarchive/entreg/model"
)

// Merge reasons reported in a consolidation plan
const (
	ReasonDuplicateName = "duplicate-name"
	ReasonKnownAlias    = "known-alias"
	ReasonNoiseSuffix   = "noise-suffix"
)

// Merge plans the absorption of one canonical record into another.
// All mentions of Source are re-pointed to Target, alias sets are unioned
// and Source is deleted.
type Merge struct {
	SourceID int64
	TargetID int64
	Reason   string
}

// Rename plans giving an entity its curated canonical display name; the old
// name is kept as an alias.
type Rename struct {
	EntityID int64
	NewName  string
}

// Flag marks an entity whose resolution is ambiguous and needs manual
// review instead of an automatic merge.
type Flag struct {
	EntityID int64
	Name     string
	Reason   string
}

// Plan is the full set of changes one consolidation pass wants to apply
type Plan struct {
	Merges  []Merge
	Renames []Rename
	Flagged []Flag
}

// Empty reports whether the plan changes nothing, i.e. the registry is
// already at its consolidated fixed point.
func (p *Plan) Empty() bool {
	return len(p.Merges) == 0 && len(p.Renames) == 0
}

// PlanConsolidation computes the merges and renames needed to bring the
// given entity set to its alias-consolidated fixed point. Running the
// resulting plan and planning again yields an empty plan.
//
// Three mechanisms, in order: case-fold duplicate canonical names collapse
// into the tie-break winner, entities whose name is a curated alias merge
// into (or rename to) their canonical record, and entities with a trailing
// noise token merge into the record matching the stripped form. A name that
// would merge into more than one distinct record is flagged, never merged.
func (r *Resolver) PlanConsolidation(entities []*model.Entity) *Plan {
	plan := &Plan{}

	// Deterministic regardless of input order
	sorted := make([]*model.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byName := map[string][]*model.Entity{}
	for _, entity := range sorted {
		key := strings.ToLower(entity.Name)
		byName[key] = append(byName[key], entity)
	}

	absorbed := map[int64]bool{}

	// Collapse case-fold duplicates of the same name
	keys := make([]string, 0, len(byName))
	for key := range byName {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		group := byName[key]
		if len(group) < 2 {
			continue
		}
		winner := SelectCanonical(group)
		for _, entity := range group {
			if entity.ID == winner.ID {
				continue
			}
			plan.Merges = append(plan.Merges, Merge{SourceID: entity.ID, TargetID: winner.ID, Reason: ReasonDuplicateName})
			absorbed[entity.ID] = true
		}
		byName[key] = []*model.Entity{winner}
	}

	targetFor := func(name string) (*model.Entity, int) {
		candidates := byName[strings.ToLower(name)]
		remaining := make([]*model.Entity, 0, len(candidates))
		for _, candidate := range candidates {
			if !absorbed[candidate.ID] {
				remaining = append(remaining, candidate)
			}
		}
		if len(remaining) == 0 {
			return nil, 0
		}
		return remaining[0], len(remaining)
	}

	// Known-alias table lookup
	for _, entity := range sorted {
		if absorbed[entity.ID] {
			continue
		}
		canonical, known := r.Resolve(entity.Name)
		if !known || strings.EqualFold(canonical, entity.Name) {
			continue
		}

		target, count := targetFor(canonical)
		switch {
		case count > 1:
			plan.Flagged = append(plan.Flagged, Flag{EntityID: entity.ID, Name: entity.Name, Reason: ReasonKnownAlias})
		case count == 1 && target.ID != entity.ID:
			plan.Merges = append(plan.Merges, Merge{SourceID: entity.ID, TargetID: target.ID, Reason: ReasonKnownAlias})
			absorbed[entity.ID] = true
		case count == 0:
			// The canonical record does not exist yet, this entity becomes it
			plan.Renames = append(plan.Renames, Rename{EntityID: entity.ID, NewName: canonical})
			byName[strings.ToLower(canonical)] = append(byName[strings.ToLower(canonical)], entity)
		}
	}

	// Structural noise-suffix stripping
	for _, entity := range sorted {
		if absorbed[entity.ID] {
			continue
		}
		stripped, ok := r.StripNoise(entity.Name)
		if !ok {
			continue
		}

		target, count := targetFor(stripped)
		switch {
		case count > 1:
			plan.Flagged = append(plan.Flagged, Flag{EntityID: entity.ID, Name: entity.Name, Reason: ReasonNoiseSuffix})
		case count == 1 && target.ID != entity.ID:
			plan.Merges = append(plan.Merges, Merge{SourceID: entity.ID, TargetID: target.ID, Reason: ReasonNoiseSuffix})
			absorbed[entity.ID] = true
		}
	}

	return plan
}
