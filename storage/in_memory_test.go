package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// Interface compliance (compile-time assertions)
var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)

func TestInMemoryStore_SaveLoadIsolation(t *testing.T) {
	store := NewInMemoryStore()
	data := []byte("hello")
	if err := store.Save("blob1", data); err != nil {
		t.Fatalf("save: %v", err)
	}
	// mutate original slice
	data[0] = 'H'
	out, err := store.Load("blob1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(out) != "hello" { // should not reflect mutation
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	// mutate returned slice
	out[0] = 'x'
	out2, _ := store.Load("blob1")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Save("a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("b", []byte("2")); err != nil {
		t.Fatal(err)
	}
	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	if err := store.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted blob, got %v", err)
	}
	if err := store.Delete("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("blob%d", i%10)
			if err := store.Save(name, []byte("data")); err != nil {
				t.Errorf("save err: %v", err)
			}
			_, _ = store.List()
		}()
	}
	wg.Wait()
	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 10 {
		t.Fatalf("expected 10 blobs, got %d", len(names))
	}
}
