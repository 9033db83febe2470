package series

import "time"

// Item is a single sample in a series
type Item struct {
	Time  time.Time
	Valid bool
	Value int32
}

// Series is an append-only, oldest-first list of samples. It is not safe for
// concurrent use; the owner serializes access.
type Series struct {
	items []Item
}

// New creates an empty series
func New() *Series {
	return &Series{}
}

// Add appends a sample
func (s *Series) Add(t time.Time, valid bool, value int32) {
	s.items = append(s.items, Item{Time: t, Valid: valid, Value: value})
}

// Get returns the sample at index i
func (s *Series) Get(i int) (Item, bool) {
	if i < 0 || i >= len(s.items) {
		return Item{}, false
	}
	return s.items[i], true
}

// Len returns the number of samples
func (s *Series) Len() int {
	return len(s.items)
}

// Items returns a copy of all samples
func (s *Series) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Compact merges count samples starting at start into groups of factor
// samples each. A group keeps the first sample's time shifted by the mean
// offset of its members, and the truncated mean of its valid values. A group
// without any valid member becomes an invalid zero sample.
func (s *Series) Compact(start, count, factor int) {
	if factor < 2 || count <= 0 {
		return
	}
	if start < 0 {
		count += start
		start = 0
	}
	if start >= len(s.items) {
		return
	}
	if start+count > len(s.items) {
		count = len(s.items) - start
	}
	if count <= 0 {
		return
	}

	out := start
	for g := start; g < start+count; g += factor {
		end := g + factor
		if end > start+count {
			end = start + count
		}

		first := s.items[g].Time
		var offset time.Duration
		var sum int64
		valid := 0
		for _, it := range s.items[g:end] {
			offset += it.Time.Sub(first)
			if it.Valid {
				sum += int64(it.Value)
				valid++
			}
		}

		merged := Item{Time: first.Add(offset / time.Duration(end-g))}
		if valid > 0 {
			merged.Valid = true
			merged.Value = int32(sum / int64(valid))
		}
		s.items[out] = merged
		out++
	}

	tail := copy(s.items[out:], s.items[start+count:])
	s.items = s.items[:out+tail]
}

// FindSegmentStart walks back from top while the sampling interval stays
// close to the interval between the two newest samples of the run, and
// returns the index of the oldest sample that still belongs to it.
func (s *Series) FindSegmentStart(top int) int {
	if top >= len(s.items) {
		top = len(s.items) - 1
	}
	if top <= 0 {
		return 0
	}

	ref := s.items[top].Time.Sub(s.items[top-1].Time)
	lo := ref * 2 / 3
	hi := time.Millisecond + ref*4/3

	i := top - 1
	for i > 0 {
		d := s.items[i].Time.Sub(s.items[i-1].Time)
		if d < lo || d > hi {
			break
		}
		i--
	}
	return i
}
