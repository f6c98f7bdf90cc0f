package history

import (
	"reflect"
	"testing"
)

func appendRange(b *Buffer, from, to int) {
	for i := from; i <= to; i++ {
		b.Append(float64(i))
	}
}

func TestBuffer_CapBoundary(t *testing.T) {
	b := NewBuffer(DefaultCapacity)
	appendRange(b, 1, DefaultCapacity)

	if b.Len() != DefaultCapacity {
		t.Fatalf("Len() = %d, want %d", b.Len(), DefaultCapacity)
	}
	got := b.Values()
	if got[0] != 1 || got[len(got)-1] != DefaultCapacity {
		t.Fatalf("Values() = [%v .. %v], want [1 .. %d]", got[0], got[len(got)-1], DefaultCapacity)
	}

	b.Append(DefaultCapacity + 1)
	got = b.Values()
	if len(got) != DefaultCapacity {
		t.Fatalf("len(Values()) = %d, want %d", len(got), DefaultCapacity)
	}
	if got[0] != 2 {
		t.Fatalf("oldest = %v, want 2 (exactly one evicted)", got[0])
	}
	if got[len(got)-1] != DefaultCapacity+1 {
		t.Fatalf("newest = %v, want %d", got[len(got)-1], DefaultCapacity+1)
	}
}

func TestBuffer_KeepsLastCapValuesInOrder(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		appended int
	}{
		{name: "double capacity", capacity: 5, appended: 10},
		{name: "one wrap plus two", capacity: 4, appended: 6},
		{name: "many wraps", capacity: 3, appended: 101},
		{name: "under capacity", capacity: 8, appended: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.capacity)
			appendRange(b, 1, tt.appended)

			var want []float64
			start := tt.appended - tt.capacity + 1
			if start < 1 {
				start = 1
			}
			for i := start; i <= tt.appended; i++ {
				want = append(want, float64(i))
			}

			if got := b.Values(); !reflect.DeepEqual(got, want) {
				t.Fatalf("Values() = %v, want %v", got, want)
			}
			if b.Cap() != tt.capacity {
				t.Fatalf("Cap() = %d, want %d", b.Cap(), tt.capacity)
			}
		})
	}
}

func TestBuffer_ValuesIsCopy(t *testing.T) {
	b := NewBuffer(3)
	appendRange(b, 1, 3)

	got := b.Values()
	got[0] = 99

	if again := b.Values(); again[0] != 1 {
		t.Fatalf("Values()[0] = %v after caller mutation, want 1", again[0])
	}
}

func TestNewBuffer_DefaultCapacity(t *testing.T) {
	if got := NewBuffer(0).Cap(); got != DefaultCapacity {
		t.Fatalf("NewBuffer(0).Cap() = %d, want %d", got, DefaultCapacity)
	}
}

func TestSet(t *testing.T) {
	s := NewSet(2)
	for _, name := range AllSeries {
		if _, ok := s.buffers[name]; !ok {
			t.Fatalf("series %q not created", name)
		}
	}

	s.Append(CPU, 1)
	s.Append(CPU, 2)
	s.Append(CPU, 3)
	s.Append(NetUp, 7)

	if got := s.Values(CPU); !reflect.DeepEqual(got, []float64{2, 3}) {
		t.Fatalf("Values(CPU) = %v, want [2 3]", got)
	}
	if got := s.Values(NetUp); !reflect.DeepEqual(got, []float64{7}) {
		t.Fatalf("Values(NetUp) = %v, want [7]", got)
	}
	if got := s.Values(Memory); len(got) != 0 {
		t.Fatalf("Values(Memory) = %v, want empty", got)
	}
	if got := s.Values("gpu"); got != nil {
		t.Fatalf("Values(unknown) = %v, want nil", got)
	}

	s.Append("gpu", 4)
	if got := s.Values("gpu"); !reflect.DeepEqual(got, []float64{4}) {
		t.Fatalf("Values(gpu) = %v, want [4]", got)
	}
}
