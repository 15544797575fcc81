package snapshot

import "github.com/Parumezan/toxidoc/internal/entity"

// Reconcile merges the previous snapshot's entities with a fresh extraction.
//
// The result lists, first, every previous entity without a current match, marked
// Removed and in previous order; then every current entity in order: matched ones
// are the previous entity updated field by field (Modified if a tracked field
// changed and it was Unchanged), unmatched ones are Added. Matching is by identity
// key only, so a renamed declaration surfaces as Removed plus Added. Previous
// overload indices are taken as they were saved and never renumbered. When the
// previous side repeats an identity key, only its first entry is matched; the
// repeats are reported Removed so they are dropped from the next snapshot.
//
// Neither input is modified.
func Reconcile(previous, current []entity.Entity) []entity.Entity {
	prevByKey := make(map[entity.Key]int, len(previous))
	for i := range previous {
		key := previous[i].Key()
		if _, dup := prevByKey[key]; !dup {
			prevByKey[key] = i
		}
	}

	currentKeys := make(map[entity.Key]bool, len(current))
	for i := range current {
		currentKeys[current[i].Key()] = true
	}

	merged := make([]entity.Entity, 0, len(previous)+len(current))
	for i := range previous {
		key := previous[i].Key()
		if currentKeys[key] && prevByKey[key] == i {
			continue
		}
		removed := previous[i].Clone()
		removed.State = entity.StateRemoved
		merged = append(merged, removed)
	}

	for i := range current {
		c := &current[i]
		idx, found := prevByKey[c.Key()]
		if !found {
			added := c.Clone()
			added.State = entity.StateAdded
			merged = append(merged, added)
			continue
		}

		m := previous[idx].Clone()
		m.Update(c)
		merged = append(merged, m)
	}
	return merged
}

// Persistable returns the entities to write into the next snapshot: everything but
// Removed entities.
func Persistable(merged []entity.Entity) []entity.Entity {
	kept := make([]entity.Entity, 0, len(merged))
	for _, e := range merged {
		if e.State != entity.StateRemoved {
			kept = append(kept, e)
		}
	}
	return kept
}

// Baseline returns a copy of persisted entities with every state reset to Unchanged.
// The state stored in a snapshot describes the run that saved it; as the previous
// side of the next reconciliation every entity starts out Unchanged.
func Baseline(entities []entity.Entity) []entity.Entity {
	baseline := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if e.State == entity.StateRemoved {
			continue
		}
		b := e.Clone()
		b.State = entity.StateUnchanged
		baseline = append(baseline, b)
	}
	return baseline
}
