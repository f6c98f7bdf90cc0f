// Package history keeps bounded rolling sample buffers for charting.
package history

// DefaultCapacity is the number of samples a buffer keeps when no capacity is given.
const DefaultCapacity = 60

// Series names one tracked metric.
type Series string

const (
	CPU     Series = "cpu"
	Memory  Series = "memory"
	Disk    Series = "disk"
	NetUp   Series = "net_up"
	NetDown Series = "net_down"
)

// AllSeries lists the series the sampler tracks, in display order.
var AllSeries = []Series{CPU, Memory, Disk, NetUp, NetDown}

// Buffer is a fixed-capacity FIFO of float samples. When full, appending
// evicts the oldest sample. Buffer is not safe for concurrent use.
type Buffer struct {
	data  []float64
	head  int // index of the oldest sample
	count int
}

// NewBuffer returns an empty buffer holding at most capacity samples.
// A non-positive capacity selects DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{data: make([]float64, capacity)}
}

// Append adds v at the tail.
func (b *Buffer) Append(v float64) {
	if b.count < len(b.data) {
		b.data[(b.head+b.count)%len(b.data)] = v
		b.count++
		return
	}
	b.data[b.head] = v
	b.head = (b.head + 1) % len(b.data)
}

// Values returns a copy of the contents, oldest first.
func (b *Buffer) Values() []float64 {
	out := make([]float64, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.data[(b.head+i)%len(b.data)]
	}
	return out
}

// Len returns the number of samples held.
func (b *Buffer) Len() int { return b.count }

// Cap returns the capacity fixed at construction.
func (b *Buffer) Cap() int { return len(b.data) }

// Set holds one Buffer per series, all with the same capacity.
type Set struct {
	capacity int
	buffers  map[Series]*Buffer
}

// NewSet creates buffers for the given series, or AllSeries when none are given.
func NewSet(capacity int, series ...Series) *Set {
	if len(series) == 0 {
		series = AllSeries
	}
	s := &Set{
		capacity: capacity,
		buffers:  make(map[Series]*Buffer, len(series)),
	}
	for _, name := range series {
		s.buffers[name] = NewBuffer(capacity)
	}
	return s
}

// Append adds v to the named series, creating it on first use.
func (s *Set) Append(series Series, v float64) {
	b, ok := s.buffers[series]
	if !ok {
		b = NewBuffer(s.capacity)
		s.buffers[series] = b
	}
	b.Append(v)
}

// Values returns a copy of the named series, oldest first. Unknown series are empty.
func (s *Set) Values(series Series) []float64 {
	b, ok := s.buffers[series]
	if !ok {
		return nil
	}
	return b.Values()
}
