package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/camkit/camkit/core"
)

// Interface compliance (compile-time assertion)
var _ core.MediaStore = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveLoadIsolation(t *testing.T) {
	s := NewInMemoryStore()
	data := []byte("hello")
	if err := s.Save("k1", data); err != nil {
		t.Fatalf("save: %v", err)
	}
	// mutate original slice
	data[0] = 'H'
	out, err := s.Load("k1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(out) != "hello" { // should not reflect mutation
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	// mutate returned slice
	out[0] = 'x'
	out2, _ := s.Load("k1")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestInMemoryStore_OverwriteAndRemove(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.Save("k1", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("k1", []byte("v2")); err != nil {
		t.Fatalf("overwrite should be idempotent: %v", err)
	}
	out, err := s.Load("k1")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "v2" {
		t.Fatalf("expected overwrite, got %q", string(out))
	}
	if err := s.Remove("k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Load("k1"); !errors.Is(err, core.ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
	// removing an absent key is a no-op
	if err := s.Remove("k1"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			if err := s.Save(key, []byte("data")); err != nil {
				t.Errorf("save err: %v", err)
			}
			_, _ = s.Load(key)
			if i%3 == 0 {
				_ = s.Remove(key)
			}
		}()
	}
	wg.Wait()
}
