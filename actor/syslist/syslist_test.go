package syslist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestFirstListPrependBuildsStackOrder(t *testing.T) {
	var l LatestFirstList
	l = l.Prepend(NewEntry("a"))
	l = l.Prepend(NewEntry("b"))
	l = l.Prepend(NewEntry("c"))

	require.False(t, l.IsEmpty())
	assert.Equal(t, 3, l.Size())

	var got []interface{}
	for cur := l; !cur.IsEmpty(); cur = cur.Tail() {
		got = append(got, cur.Head().Kind)
	}
	assert.Equal(t, []interface{}{"c", "b", "a"}, got)
}

func TestReverseConvertsLatestToEarliestFIFOOrder(t *testing.T) {
	var l LatestFirstList
	l = l.Prepend(NewEntry(1))
	l = l.Prepend(NewEntry(2))
	l = l.Prepend(NewEntry(3))
	// l is now newest-first: 3, 2, 1 (i.e. 1 was prepended first == oldest)

	earliest := l.Reverse()
	var got []interface{}
	for cur := earliest; !cur.IsEmpty(); cur = cur.Tail() {
		got = append(got, cur.Head().Kind)
	}
	assert.Equal(t, []interface{}{1, 2, 3}, got)
}

func TestReverseRoundTripRestoresOrder(t *testing.T) {
	var l LatestFirstList
	l = l.Prepend(NewEntry("x"))
	l = l.Prepend(NewEntry("y"))
	l = l.Prepend(NewEntry("z"))

	back := l.Reverse().Reverse()
	var got []interface{}
	for cur := back; !cur.IsEmpty(); cur = cur.Tail() {
		got = append(got, cur.Head().Kind)
	}
	assert.Equal(t, []interface{}{"z", "y", "x"}, got)
}

func TestEmptyListReverseIsEmpty(t *testing.T) {
	var l LatestFirstList
	e := l.Reverse()
	assert.True(t, e.IsEmpty())
	assert.Nil(t, e.Head())
}

func TestUnlinkAndIsUnlinked(t *testing.T) {
	a := NewEntry("a")
	b := NewEntry("b")
	a.next = b
	assert.False(t, a.IsUnlinked())
	a.Unlink()
	assert.True(t, a.IsUnlinked())
	assert.True(t, b.IsUnlinked())
}

func TestReversePrependMergesAheadOfEarliestList(t *testing.T) {
	// earliest-first list currently being processed: [1, 2]
	var earliest EarliestFirstList
	n2 := NewEntry(2)
	n1 := NewEntry(1)
	n1.next = n2
	earliest = EarliestFirstList{head: n1}

	// newly drained latest-first chain: prepend(3), prepend(4) => head 4 -> 3
	var latest LatestFirstList
	latest = latest.Prepend(NewEntry(3))
	latest = latest.Prepend(NewEntry(4))

	merged := earliest.ReversePrepend(latest)

	var got []interface{}
	for cur := merged; !cur.IsEmpty(); cur = cur.Tail() {
		got = append(got, cur.Head().Kind)
	}
	assert.Equal(t, []interface{}{3, 4, 1, 2}, got)
}

func TestReversePrependWithEmptyLatestReturnsOriginal(t *testing.T) {
	var earliest EarliestFirstList
	earliest = EarliestFirstList{head: NewEntry("only")}
	var empty LatestFirstList
	merged := earliest.ReversePrepend(empty)
	assert.Equal(t, "only", merged.Head().Kind)
	assert.True(t, merged.Tail().IsEmpty())
}

func TestIsNoMessageSentinel(t *testing.T) {
	sealed := NewEntry(NoMessage)
	assert.True(t, IsNoMessage(sealed))

	ordinary := NewEntry("hello")
	assert.False(t, IsNoMessage(ordinary))
	assert.False(t, IsNoMessage(nil))
}

func TestSizeIsTraversalNotCounter(t *testing.T) {
	var l LatestFirstList
	assert.Equal(t, 0, l.Size())
	for i := 0; i < 5; i++ {
		l = l.Prepend(NewEntry(i))
	}
	assert.Equal(t, 5, l.Size())
}
