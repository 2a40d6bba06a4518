package imganalogy

import "testing"

func TestSynthesisMapAbsentVersusOrigin(t *testing.T) {
	m := NewSynthesisMap(4)
	if _, ok := m.Get(0); ok {
		t.Error("Unset pixel should be absent")
	}

	m.Set(0, Coord{})
	src, ok := m.Get(0)
	if !ok || src != (Coord{}) {
		t.Errorf("Expected (0,0) to be recorded, got %v ok=%v", src, ok)
	}
	if _, ok := m.Get(1); ok {
		t.Error("Pixel 1 should still be absent")
	}
	if _, ok := m.Get(-1); ok {
		t.Error("Negative index should be absent")
	}
}

func TestSynthesisMapOrder(t *testing.T) {
	m := NewSynthesisMap(2)
	m.Set(3, Coord{Row: 1, Col: 1})
	m.Set(0, Coord{Row: 2, Col: 2})
	m.Set(3, Coord{Row: 4, Col: 4})

	keys := m.Indices()
	if len(keys) != 2 || keys[0] != 3 || keys[1] != 0 {
		t.Errorf("Expected insertion order [3 0], got %v", keys)
	}
	if src, _ := m.Get(3); src != (Coord{Row: 4, Col: 4}) {
		t.Errorf("Expected overwritten source (4,4), got %v", src)
	}
	if m.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", m.Len())
	}

	var visited []int
	m.Iterate(func(i int, _ Coord) { visited = append(visited, i) })
	if len(visited) != 2 || visited[0] != 3 {
		t.Errorf("Iterate should follow insertion order, got %v", visited)
	}
}

func TestSynthesisMapReset(t *testing.T) {
	m := NewSynthesisMap(4)
	m.Set(1, Coord{Row: 1})
	m.Reset(8)
	if m.Len() != 0 {
		t.Errorf("Expected empty map after reset, got %d", m.Len())
	}
	if _, ok := m.Get(1); ok {
		t.Error("Reset should forget recorded pixels")
	}
	m.Set(7, Coord{Col: 2})
	if _, ok := m.Get(7); !ok {
		t.Error("Map should accept pixels of the resized level")
	}
}
