package uuid_test

import (
	"context"
	"sync"
	"testing"

	google_uuid "github.com/google/uuid"
	"github.com/jrife/warden/utils/uuid"
)

func TestRandomGenerator(t *testing.T) {
	gen := uuid.RandomGenerator{}
	a := gen.NewID()
	b := gen.NewID()

	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}

	if _, err := google_uuid.Parse(a); err != nil {
		t.Fatalf("expected a parseable uuid, got %#v", err)
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := &uuid.SequenceGenerator{Prefix: "tx"}

	if id := gen.NewID(); id != "tx-1" {
		t.Fatalf("expected tx-1, got %s", id)
	}

	if id := gen.NewID(); id != "tx-2" {
		t.Fatalf("expected tx-2, got %s", id)
	}
}

func TestSequenceGeneratorConcurrent(t *testing.T) {
	gen := &uuid.SequenceGenerator{Prefix: "tx"}
	seen := sync.Map{}
	wg := sync.WaitGroup{}

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				if _, dup := seen.LoadOrStore(gen.NewID(), true); dup {
					t.Errorf("duplicate id")
				}
			}
		}()
	}

	wg.Wait()
}

func TestGeneratorFromContext(t *testing.T) {
	fallback := &uuid.SequenceGenerator{Prefix: "default"}
	override := &uuid.SequenceGenerator{Prefix: "ctx"}

	if gen := uuid.GeneratorFromContext(context.Background(), fallback); gen != fallback {
		t.Fatalf("expected fallback generator")
	}

	ctx := uuid.WithGenerator(context.Background(), override)

	if gen := uuid.GeneratorFromContext(ctx, fallback); gen != override {
		t.Fatalf("expected context generator")
	}
}
