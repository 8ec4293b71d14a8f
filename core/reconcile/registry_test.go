package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_AddRemove(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Add("prop-1", 101))
	assert.False(t, r.Add("prop-1", 999), "re-adding must not overwrite")
	assert.True(t, r.Has("prop-1"))
	assert.Equal(t, 1, r.Len())

	id, ok := r.LedgerID("prop-1")
	assert.True(t, ok)
	assert.Equal(t, uint64(101), id)

	asset, ok := r.Resolve(101)
	assert.True(t, ok)
	assert.Equal(t, "prop-1", asset)

	assert.True(t, r.Remove("prop-1"))
	assert.False(t, r.Remove("prop-1"))
	assert.False(t, r.Has("prop-1"))
	_, ok = r.Resolve(101)
	assert.False(t, ok)
}

func TestRegistry_SortedSnapshots(t *testing.T) {
	r := NewRegistry()
	r.Add("prop-b", 2)
	r.Add("prop-a", 3)
	r.Add("prop-c", 1)

	assert.Equal(t, []string{"prop-a", "prop-b", "prop-c"}, r.List())
	assert.Equal(t, []uint64{1, 2, 3}, r.LedgerIDs())
}
