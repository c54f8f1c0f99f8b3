package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogSortsAndValidates(t *testing.T) {
	c, err := NewCatalog([]SessionDefinition{
		{SessionNumber: 3},
		{SessionNumber: 1},
		{SessionNumber: 2},
	})
	require.NoError(t, err)
	require.Len(t, c, 3)
	assert.Equal(t, 1, c[0].SessionNumber)
	assert.Equal(t, 3, c[2].SessionNumber)
}

func TestNewCatalogRejectsGaps(t *testing.T) {
	_, err := NewCatalog([]SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 3},
	})
	assert.Error(t, err)
}

func TestNewCatalogRejectsZeroBasedNumbering(t *testing.T) {
	_, err := NewCatalog([]SessionDefinition{
		{SessionNumber: 0},
		{SessionNumber: 1},
	})
	assert.Error(t, err)
}

func TestNewCatalogRejectsNegativeDuration(t *testing.T) {
	_, err := NewCatalog([]SessionDefinition{
		{SessionNumber: 1, DurationSeconds: -5},
	})
	assert.Error(t, err)
}

func TestCatalogSessionLookup(t *testing.T) {
	c, err := NewCatalog([]SessionDefinition{
		{SessionNumber: 1, DurationSeconds: 600},
		{SessionNumber: 2, DurationSeconds: 900},
	})
	require.NoError(t, err)

	def, ok := c.Session(2)
	require.True(t, ok)
	assert.Equal(t, 900, def.DurationSeconds)

	_, ok = c.Session(3)
	assert.False(t, ok)
	_, ok = c.Session(0)
	assert.False(t, ok)
}

func TestRequiredAssignmentsCountsDistinctGates(t *testing.T) {
	c, err := NewCatalog([]SessionDefinition{
		{SessionNumber: 1},
		{SessionNumber: 2, Rules: UnlockRules{RequiresAssignment: true, UnlockAssignmentID: 7}},
		{SessionNumber: 3, Rules: UnlockRules{RequiresAssignment: true, UnlockAssignmentID: 7}},
		{SessionNumber: 4, Rules: UnlockRules{RequiresAssignment: true}},
	})
	require.NoError(t, err)

	// assignment 7 gates two sessions but counts once; the any-submission
	// gate on session 4 counts separately
	assert.Equal(t, 2, c.RequiredAssignments())
}
