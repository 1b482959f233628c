package state

import (
	"sort"
	"sync"
	"testing"
)

func TestMemoryUpdateAndDelete(t *testing.T) {
	m := NewMemory[[]int]()

	m.Update(1, func(cur []int, ok bool) ([]int, bool) {
		if ok {
			t.Fatalf("unexpected existing entry: %v", cur)
		}
		return append(cur, 7), true
	})
	got, ok := m.Get(1)
	if !ok || len(got) != 1 || got[0] != 7 {
		t.Fatalf("unexpected value after update: %v %v", got, ok)
	}

	m.Update(1, func(cur []int, ok bool) ([]int, bool) { return nil, false })
	if _, ok := m.Get(1); ok {
		t.Fatal("entry should be removed when keep=false")
	}

	m.Set(2, []int{1})
	if v, ok := m.Delete(2); !ok || len(v) != 1 {
		t.Fatalf("delete returned %v %v", v, ok)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty store, got %d", m.Len())
	}
}

func TestMemoryDeleteFunc(t *testing.T) {
	m := NewMemory[int]()
	for i := int64(1); i <= 6; i++ {
		m.Set(i, int(i))
	}
	removed := m.DeleteFunc(func(_ int64, v int) bool { return v%2 == 0 })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	if len(removed) != 3 || removed[0] != 2 || removed[1] != 4 || removed[2] != 6 {
		t.Fatalf("unexpected removed ids: %v", removed)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 entries left, got %d", m.Len())
	}
}

func TestKeyLockerSerializesSameUser(t *testing.T) {
	l := NewKeyLocker()
	m := NewMemory[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(42)
			defer unlock()
			v, _ := m.Get(42)
			m.Set(42, v+1)
		}()
	}
	wg.Wait()

	if v, _ := m.Get(42); v != 50 {
		t.Fatalf("expected 50 increments, got %d", v)
	}
}
