package table_test

import (
	"testing"

	"github.com/mimirforensics/recoverfs/pkg/table"
	"github.com/stretchr/testify/require"
)

func TestPrefixTableGet(t *testing.T) {
	tbl := table.New[string]()
	tbl.Insert([]byte("abc"), "value-abc")

	v, ok := tbl.Get([]byte("abc"))
	require.True(t, ok)
	require.Equal(t, "value-abc", v)

	_, ok = tbl.Get([]byte("xyz"))
	require.False(t, ok)
}

func TestPrefixTableWalkMatchesShortestAndLongestPrefix(t *testing.T) {
	tbl := table.New[string]()
	tbl.Insert([]byte("apple"), "fruit")
	tbl.Insert([]byte("applet"), "mini-app")

	var matched []string
	tbl.Walk([]byte("appletie"), func(v string) bool {
		matched = append(matched, v)
		return false
	})
	require.Equal(t, []string{"fruit", "mini-app"}, matched)
}

func TestPrefixTableWalkNoMatch(t *testing.T) {
	tbl := table.New[string]()
	tbl.Insert([]byte("apricot"), "fruit")

	var matched []string
	tbl.Walk([]byte("application"), func(v string) bool {
		matched = append(matched, v)
		return false
	})
	require.Empty(t, matched)
}

func TestPrefixTableWalkStopsEarly(t *testing.T) {
	tbl := table.New[string]()
	tbl.Insert([]byte("a"), "one")
	tbl.Insert([]byte("ab"), "two")
	tbl.Insert([]byte("abc"), "three")

	var matched []string
	tbl.Walk([]byte("abc"), func(v string) bool {
		matched = append(matched, v)
		return true // stop after first match
	})
	require.Equal(t, []string{"one"}, matched)
}

func TestPrefixTableSize(t *testing.T) {
	tbl := table.New[int]()
	require.Equal(t, 0, tbl.Size())
	tbl.Insert([]byte("a"), 1)
	tbl.Insert([]byte("b"), 2)
	require.Equal(t, 2, tbl.Size())
}
