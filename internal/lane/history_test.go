package lane

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistory_NonPositiveCapacity(t *testing.T) {
	for _, c := range []int{0, -3} {
		_, err := NewHistory(c)
		assert.ErrorIs(t, err, ErrInvalidConfig, "capacity %d", c)
	}
}

func TestHistory_MedianBeforeUpdate(t *testing.T) {
	h, err := NewHistory(19)
	require.NoError(t, err)

	got, ok := h.Median()
	assert.False(t, ok)
	for i, v := range got {
		assert.True(t, math.IsNaN(v), "column %d = %v", i, v)
	}
}

func TestHistory_SeedsByReplication(t *testing.T) {
	h, err := NewHistory(4)
	require.NoError(t, err)

	f := Features{1, 2, 3, 4}
	h.Update(f)
	assert.Equal(t, 4, h.Len())

	got, ok := h.Median()
	require.True(t, ok)
	assert.Equal(t, f, got)
}

func TestHistory_MedianOfDistinctTuples(t *testing.T) {
	h, err := NewHistory(5)
	require.NoError(t, err)

	rows := []Features{
		{300, 980, 640, 414},
		{310, 970, 650, 420},
		{290, 990, 630, 400},
		{305, 960, 660, 430},
		{295, 1000, 620, 410},
	}
	for _, r := range rows {
		h.Update(r)
	}

	got, ok := h.Median()
	require.True(t, ok)
	assert.Equal(t, Features{300, 980, 640, 414}, got)
	assert.Equal(t, 5, h.Len())
}

func TestHistory_EvenCapacityAveragesMiddle(t *testing.T) {
	h, err := NewHistory(4)
	require.NoError(t, err)

	for _, v := range []float64{1, 2, 3, 4} {
		h.Update(Features{v, v * 10, -v, 0})
	}

	got, ok := h.Median()
	require.True(t, ok)
	assert.Equal(t, Features{2.5, 25, -2.5, 0}, got)
}

func TestHistory_IgnoresNaN(t *testing.T) {
	h, err := NewHistory(3)
	require.NoError(t, err)

	h.Update(Features{1, 1, 1, 1})
	h.Update(Features{2, 2, 2, 2})
	before := append([]Features(nil), h.rows...)

	h.Update(Features{9, math.NaN(), 9, 9})

	if diff := cmp.Diff(before, h.rows); diff != "" {
		t.Errorf("buffer changed on NaN update (-before +after):\n%s", diff)
	}
}

func TestHistory_NaNBeforeFirstUpdateIgnored(t *testing.T) {
	h, err := NewHistory(3)
	require.NoError(t, err)

	h.Update(Features{math.NaN(), 1, 1, 1})
	assert.Equal(t, 0, h.Len())
	_, ok := h.Median()
	assert.False(t, ok)

	// The first valid tuple seeds the buffer, so no NaN row ever enters it.
	h.Update(Features{100, 1, 1, 1})
	h.Update(Features{200, 2, 2, 2})
	h.Update(Features{300, 3, 3, 3})

	got, ok := h.Median()
	require.True(t, ok)
	if diff := cmp.Diff(Features{200, 2, 2, 2}, got); diff != "" {
		t.Errorf("median mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Reset(t *testing.T) {
	h, err := NewHistory(3)
	require.NoError(t, err)
	h.Update(Features{1, 2, 3, 4})
	h.Reset()

	assert.Equal(t, 0, h.Len())
	_, ok := h.Median()
	assert.False(t, ok)
}
