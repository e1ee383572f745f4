package sortkit_test

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flier/avmcore/pkg/avm/sortkit"
)

func TestSortOrders(t *testing.T) {
	items := []int{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}
	sortkit.SortPlain(items, func(a, b int) int { return a - b })
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, items)
}

func TestSortIsStable(t *testing.T) {
	type pair struct{ key, seq int }

	var items []pair
	for seq := 0; seq < 100; seq++ {
		items = append(items, pair{key: seq % 5, seq: seq})
	}
	rand.New(rand.NewSource(1)).Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	// remember the arrival order per key
	arrival := map[int][]int{}
	for _, it := range items {
		arrival[it.key] = append(arrival[it.key], it.seq)
	}

	sortkit.SortPlain(items, func(a, b pair) int { return a.key - b.key })

	got := map[int][]int{}
	for _, it := range items {
		got[it.key] = append(got[it.key], it.seq)
	}
	assert.Equal(t, arrival, got, "equal keys must keep their relative order")
	assert.True(t, sort.SliceIsSorted(items, func(i, j int) bool { return items[i].key < items[j].key }))
}

func TestSortSurvivesRandomComparator(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		n := rng.Intn(200)
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}

		sortkit.SortPlain(items, func(a, b int) int { return rng.Intn(3) - 1 })

		// still a permutation of the input
		require.Len(t, items, n)
		seen := make([]bool, n)
		for _, v := range items {
			require.False(t, seen[v])
			seen[v] = true
		}
	}
}

func TestSortComparatorError(t *testing.T) {
	boom := errors.New("boom")
	items := []int{4, 2, 7, 1, 9, 3}

	calls := 0
	err := sortkit.Sort(items, func(a, b int) (int, error) {
		calls++
		if calls == 3 {
			return 0, boom
		}
		return a - b, nil
	})
	require.ErrorIs(t, err, boom)

	// the buffer is still a permutation of the input
	sorted := append([]int(nil), items...)
	sort.Ints(sorted)
	assert.Equal(t, []int{1, 2, 3, 4, 7, 9}, sorted)
}

func TestSortSmall(t *testing.T) {
	var empty []int
	sortkit.SortPlain(empty, func(a, b int) int { return a - b })
	assert.Empty(t, empty)

	one := []int{42}
	sortkit.SortPlain(one, func(a, b int) int { return a - b })
	assert.Equal(t, []int{42}, one)
}
