package messagelog

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AppendAssignsSequence(t *testing.T) {
	fixed := time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)
	l := New(WithClock(func() time.Time { return fixed }))

	first := l.Append("Pete", "hi")
	second := l.Append("Sam", "")

	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)
	assert.Equal(t, "Pete", first.Sender)
	assert.Equal(t, "", second.Content)
	assert.Equal(t, fixed, first.CreatedAt)
}

func TestLog_SnapshotEmpty(t *testing.T) {
	l := New()

	snap := l.Snapshot()

	require.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestLog_SnapshotIsCopy(t *testing.T) {
	l := New()
	l.Append("a", "one")

	snap := l.Snapshot()
	snap[0].Content = "mutated"
	l.Append("a", "two")

	fresh := l.Snapshot()
	require.Len(t, fresh, 2)
	assert.Equal(t, "one", fresh[0].Content)
	assert.Len(t, snap, 1)
}

func TestLog_ConcurrentAppends(t *testing.T) {
	l := New()
	const writers, perWriter = 20, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l.Append(fmt.Sprintf("w%d", w), fmt.Sprintf("m%d", i))
			}
		}(w)
	}
	wg.Wait()

	snap := l.Snapshot()
	require.Len(t, snap, writers*perWriter)
	assert.True(t, sort.SliceIsSorted(snap, func(i, j int) bool { return snap[i].ID < snap[j].ID }))
	for i, m := range snap {
		assert.Equal(t, uint64(i+1), m.ID, "no gaps or duplicates")
	}
	assert.Equal(t, writers*perWriter, l.Len())
}
