package lane

import (
	"fmt"
	"math"
	"slices"
)

// Features is the 4-tuple smoothed by History: left bottom x, right bottom x,
// vanishing-point x, vanishing-point y.
type Features [4]float64

// HasNaN reports whether any component is not a number.
func (f Features) HasNaN() bool {
	for _, v := range f {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// undefinedFeatures is returned by Median before the first Update.
var undefinedFeatures = Features{math.NaN(), math.NaN(), math.NaN(), math.NaN()}

// History is a fixed-capacity rolling buffer of Features with a per-column
// median. Once written it always holds exactly Capacity entries.
type History struct {
	capacity int
	rows     []Features
}

// NewHistory builds an empty History. capacity must be positive.
func NewHistory(capacity int) (*History, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: history capacity must be positive, got %d", ErrInvalidConfig, capacity)
	}
	return &History{capacity: capacity}, nil
}

// Capacity returns the buffer size.
func (h *History) Capacity() int {
	return h.capacity
}

// Len returns the number of held entries: zero or Capacity.
func (h *History) Len() int {
	return len(h.rows)
}

// Update appends f, evicting the oldest entry.
//
// Tuples carrying a NaN are ignored, including before the buffer is
// initialized. The first valid tuple seeds every slot.
func (h *History) Update(f Features) {
	if f.HasNaN() {
		return
	}
	if h.rows == nil {
		h.rows = make([]Features, h.capacity)
		for i := range h.rows {
			h.rows[i] = f
		}
		return
	}
	copy(h.rows, h.rows[1:])
	h.rows[len(h.rows)-1] = f
}

// Median returns the per-column median. Before the first Update it returns
// all-NaN and false.
func (h *History) Median() (Features, bool) {
	if h.rows == nil {
		return undefinedFeatures, false
	}
	var out Features
	col := make([]float64, len(h.rows))
	for c := range out {
		for r, row := range h.rows {
			col[r] = row[c]
		}
		out[c] = median(col)
	}
	return out, true
}

// Reset forgets all entries.
func (h *History) Reset() {
	h.rows = nil
}

// median returns the middle value of vs, averaging the two middle values
// for even lengths. vs is not modified.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	s := slices.Clone(vs)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
