package id

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortableAndUnique(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(func() time.Time { return fixed })

	ids := make([]string, 500)
	seen := map[string]struct{}{}
	for i := range ids {
		ids[i] = g.New()
		seen[ids[i]] = struct{}{}
	}
	assert.Len(t, seen, len(ids))
	assert.True(t, sort.StringsAreSorted(ids), "same-millisecond ids must stay ordered")

	ts, err := Time(ids[0])
	require.NoError(t, err)
	assert.True(t, fixed.Equal(ts))
}

func TestTimeRejectsGarbage(t *testing.T) {
	_, err := Time("not-a-ulid")
	assert.Error(t, err)
}

func TestPackageNew(t *testing.T) {
	a, b := New(), New()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
