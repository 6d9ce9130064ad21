package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/skinalyze/internal/domain/model"
)

func TestMemStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx)
	defer func() { _ = store.Close() }()

	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}

	if err := store.Put(ctx, model.Patient{ID: "p1", Name: "Sarah Johnson"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}

	p, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Sarah Johnson" {
		t.Errorf("expected Sarah Johnson, got %s", p.Name)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, model.Patient{}); !errors.Is(err, ErrInvalidPatient) {
		t.Errorf("expected ErrInvalidPatient, got %v", err)
	}
}

func TestMemStore_ReplaceKeepsCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx)
	defer func() { _ = store.Close() }()

	_ = store.Put(ctx, model.Patient{ID: "p1", Name: "Before"})
	_ = store.Put(ctx, model.Patient{ID: "p1", Name: "After"})

	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}
	p, _ := store.Get(ctx, "p1")
	if p.Name != "After" {
		t.Errorf("expected replaced name, got %s", p.Name)
	}
}

func TestMemStore_ListOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx, WithPatients([]model.Patient{
		{ID: "c"}, {ID: "a"}, {ID: "b"}, {ID: ""},
	}))
	defer func() { _ = store.Close() }()

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 patients, got %d", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].ID)
		}
	}

	two, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(two) != 2 || two[1].ID != "b" {
		t.Errorf("expected [a b], got %v", two)
	}

	many, _ := store.List(ctx, 50)
	if len(many) != 3 {
		t.Errorf("expected limit above size to return all, got %d", len(many))
	}

	if _, err := store.List(ctx, -1); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	conf := 90.0
	store := NewMemStore(ctx, WithPatients([]model.Patient{{
		ID: "p1",
		Diagnoses: []model.Diagnosis{{
			RiskLevel:  "Low Risk",
			Confidence: &conf,
			Metrics:    map[string]model.MetricValue{model.MetricBorder: model.Number(91)},
		}},
	}}))
	defer func() { _ = store.Close() }()

	p, _ := store.Get(ctx, "p1")
	p.Diagnoses[0].RiskLevel = "High Risk"
	*p.Diagnoses[0].Confidence = 1
	p.Diagnoses[0].Metrics[model.MetricBorder] = model.Number(0)

	again, _ := store.Get(ctx, "p1")
	if again.Diagnoses[0].RiskLevel != "Low Risk" {
		t.Errorf("risk level leaked through copy: %s", again.Diagnoses[0].RiskLevel)
	}
	if *again.Diagnoses[0].Confidence != 90 {
		t.Errorf("confidence leaked through copy: %v", *again.Diagnoses[0].Confidence)
	}
	if v, _ := again.Diagnoses[0].Metrics[model.MetricBorder].Float(); v != 91 {
		t.Errorf("metric leaked through copy: %v", v)
	}
}

func TestMemStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(ctx)
	defer func() { _ = store.Close() }()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("p-%d-%d", w, i)
				_ = store.Put(ctx, model.Patient{ID: id})
				_, _ = store.Get(ctx, id)
				_, _ = store.List(ctx, 10)
			}
		}(w)
	}
	wg.Wait()

	if n, _ := store.Count(ctx); n != 400 {
		t.Errorf("expected 400 patients, got %d", n)
	}
}

func TestMemStore_CloseIsIdempotent(t *testing.T) {
	store := NewMemStore(context.Background())
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}

func TestSeedPatients(t *testing.T) {
	seed := SeedPatients()
	if len(seed) == 0 {
		t.Fatal("expected seed patients")
	}
	ids := map[string]bool{}
	for _, p := range seed {
		if p.ID == "" {
			t.Error("seed patient without id")
		}
		if ids[p.ID] {
			t.Errorf("duplicate seed id %s", p.ID)
		}
		ids[p.ID] = true
	}
}
