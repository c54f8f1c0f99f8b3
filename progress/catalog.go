package progress

import (
	"fmt"
	"sort"
)

// Catalog is the ordered session list of one workshop. It is read-only from
// the engine's perspective and safe to share across operations.
type Catalog []SessionDefinition

// NewCatalog sorts the definitions by session number and validates that the
// numbering is 1-based and contiguous.
func NewCatalog(defs []SessionDefinition) (Catalog, error) {
	c := make(Catalog, len(defs))
	copy(c, defs)
	sort.Slice(c, func(i, j int) bool { return c[i].SessionNumber < c[j].SessionNumber })

	for i := range c {
		if c[i].SessionNumber != i+1 {
			return nil, fmt.Errorf("session numbers must be contiguous starting at 1, got %d at position %d", c[i].SessionNumber, i+1)
		}
		if c[i].DurationSeconds < 0 {
			return nil, fmt.Errorf("session %d has negative duration", c[i].SessionNumber)
		}
	}
	return c, nil
}

// Session returns the definition for a session number.
func (c Catalog) Session(sessionNumber int) (SessionDefinition, bool) {
	if sessionNumber < 1 || sessionNumber > len(c) {
		return SessionDefinition{}, false
	}
	return c[sessionNumber-1], true
}

// assignmentGates collects the catalog's assignment gates: the set of
// specific assignment IDs plus the number of "any approved submission"
// gates (UnlockAssignmentID 0).
func (c Catalog) assignmentGates() (map[uint]bool, int) {
	ids := make(map[uint]bool)
	anyGates := 0
	for _, def := range c {
		if !def.Rules.RequiresAssignment {
			continue
		}
		if def.Rules.UnlockAssignmentID == 0 {
			anyGates++
			continue
		}
		ids[def.Rules.UnlockAssignmentID] = true
	}
	return ids, anyGates
}

// RequiredAssignments counts the distinct assignment gates in the catalog.
// Sessions gated on "any approved submission" (UnlockAssignmentID 0) count
// once each.
func (c Catalog) RequiredAssignments() int {
	ids, anyGates := c.assignmentGates()
	return len(ids) + anyGates
}
