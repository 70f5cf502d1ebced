package areas

import (
	"sync"
	"testing"
)

func TestNewCleansSeed(t *testing.T) {
	t.Parallel()

	r := New([]string{" Machine Learning ", "machine learning", "", "Robotics"})

	got := r.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 areas, got %v", got)
	}
	if got[0] != "Machine Learning" || got[1] != "Robotics" {
		t.Fatalf("unexpected areas: %v", got)
	}
}

func TestContainsIgnoresCase(t *testing.T) {
	t.Parallel()

	r := New([]string{"Computer Vision"})
	if !r.Contains("computer vision") {
		t.Fatal("expected case-insensitive match")
	}
	if r.Contains("biology") {
		t.Fatal("unexpected match")
	}
}

func TestReplaceIsAtomic(t *testing.T) {
	t.Parallel()

	r := New([]string{"a", "b"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Replace([]string{"x", "y", "z"})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := r.List()
			// Observers must see either the old set or the new one, never
			// a mid-update mix.
			if len(got) != 2 && len(got) != 3 {
				t.Errorf("observed inconsistent set: %v", got)
			}
		}()
	}
	wg.Wait()

	if got := r.List(); len(got) != 3 {
		t.Fatalf("expected replaced set, got %v", got)
	}
}

func TestListReturnsCopy(t *testing.T) {
	t.Parallel()

	r := New([]string{"a", "b"})
	got := r.List()
	got[0] = "mutated"
	if r.List()[0] != "a" {
		t.Fatal("List must return a copy")
	}
}
