package main

import (
	"testing"

	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/loader"
	"github.com/kbukum/inject/logger"
)

func newGarage(t *testing.T) *di.Injector {
	t.Helper()
	types := describeTypes()
	cat := loader.NewCatalog().AddTable(types).AddScope(TripTag)
	loaders, err := loader.Loaders(loader.NewFileManifestLoader("manifests"), cat, "garage")
	if err != nil {
		t.Fatalf("Loaders: %v", err)
	}
	inj, err := di.New(loaders, di.WithIntrospector(types), di.WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("di.New: %v", err)
	}
	t.Cleanup(func() { _ = inj.Close() })
	return inj
}

func TestFourDistinctWheels(t *testing.T) {
	inj := newGarage(t)
	wheels := di.MustGet[[]*Wheel](inj)
	if len(wheels) != 4 {
		t.Fatalf("got %d wheels, want 4", len(wheels))
	}
	seen := make(map[*Wheel]bool)
	for _, w := range wheels {
		seen[w] = true
	}
	if len(seen) != 4 {
		t.Errorf("got %d distinct wheels, want 4", len(seen))
	}
}

func TestTripNeedsItsScope(t *testing.T) {
	inj := newGarage(t)
	if _, err := di.Get[*Trip](inj); !errors.HasCode(err, errors.ErrCodeScopeNotActive) {
		t.Fatalf("expected SCOPE_NOT_ACTIVE, got %v", err)
	}

	trip, err := inj.EnterScope(TripTag.Marker())
	if err != nil {
		t.Fatalf("EnterScope: %v", err)
	}
	a := di.MustGet[*Trip](trip)
	if b := di.MustGet[*Trip](trip); a != b {
		t.Error("one trip context produced two trips")
	}
	if err := trip.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.Closed {
		t.Error("trip was not closed with its context")
	}
}

func TestDrive(t *testing.T) {
	if err := drive(newGarage(t), logger.NewNop()); err != nil {
		t.Fatalf("drive: %v", err)
	}
}
