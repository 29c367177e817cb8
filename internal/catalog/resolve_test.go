package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/db"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
)

func exerciseRecord(id, name, category string) models.RawRecord {
	return models.RawRecord{
		ID:          id,
		CatalogType: models.CatalogTypeExercise,
		Name:        name,
		Category:    category,
		Facets:      map[string]string{"equipment": "barbell"},
	}
}

func findByID(entries []models.CatalogEntry, id string) (models.CatalogEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.CatalogEntry{}, false
}

func TestResolve_OverrideShadowsGlobalEntry(t *testing.T) {
	src := newFakeSource()
	src.addGlobal(exerciseRecord("ex_42", "Bench Press", "chest"))
	src.addTenant("T1", models.RawRecord{
		ID:          "ex_t1_1",
		CatalogType: models.CatalogTypeExercise,
		Name:        "Bench Press (narrow grip)",
		Category:    "chest",
		OverridesID: "ex_42",
	})

	engine := NewEngine(src, NewGate(nil))
	merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if _, ok := findByID(merged, "ex_42"); ok {
		t.Fatalf("shadowed global entry ex_42 still present in merged view")
	}
	override, ok := findByID(merged, "ex_t1_1")
	if !ok {
		t.Fatalf("override entry missing from merged view")
	}
	if override.Origin != models.OriginTenant {
		t.Errorf("override origin = %q, want %q", override.Origin, models.OriginTenant)
	}
	if !override.Editable {
		t.Errorf("tenant override must be editable")
	}
}

func TestResolve_TenantEntriesAreIsolated(t *testing.T) {
	src := newFakeSource()
	src.addTenant("T1", exerciseRecord("ex_private", "Cable Fly", "chest"))

	engine := NewEngine(src, NewGate(nil))
	merged, err := engine.Resolve(context.Background(), "T2", models.CatalogTypeExercise, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, ok := findByID(merged, "ex_private"); ok {
		t.Fatalf("tenant T1's private entry leaked into T2's view")
	}
}

func TestResolve_SharedCatalogToggleOff(t *testing.T) {
	src := newFakeSource()
	src.addGlobal(
		exerciseRecord("ex_1", "Squat", "quads"),
		exerciseRecord("ex_2", "Deadlift", "hamstrings"),
	)
	src.addTenant("T1", exerciseRecord("ex_own", "Band Walk", "glutes"))
	src.settings[settingsKey("T1", models.CatalogTypeExercise)] = models.TenantCatalogSettings{UseSharedCatalog: false}

	engine := NewEngine(src, NewGate(nil))
	merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	for _, entry := range merged {
		if entry.Origin == models.OriginGlobal {
			t.Errorf("global entry %s visible with shared catalog disabled", entry.ID)
		}
	}
	if _, ok := findByID(merged, "ex_own"); !ok {
		t.Fatalf("tenant-private entry must survive the shared-catalog toggle")
	}
}

func TestResolve_EditabilityDerivedFromGate(t *testing.T) {
	src := newFakeSource()
	src.addGlobal(exerciseRecord("ex_1", "Squat", "quads"))
	src.addTenant("T1", exerciseRecord("ex_own", "Band Walk", "glutes"))
	src.addTenant("T2", exerciseRecord("ex_own2", "Step Up", "glutes"))

	engine := NewEngine(src, NewGate([]string{"T1"}))

	for _, tc := range []struct {
		tenant       string
		wantGlobalEd bool
	}{
		{"T1", true},
		{"T2", false},
	} {
		merged, err := engine.Resolve(context.Background(), tc.tenant, models.CatalogTypeExercise, "")
		if err != nil {
			t.Fatalf("resolve failed for %s: %v", tc.tenant, err)
		}
		for _, entry := range merged {
			want := entry.Origin == models.OriginTenant || (entry.Origin == models.OriginGlobal && tc.wantGlobalEd)
			if entry.Editable != want {
				t.Errorf("tenant %s entry %s editable = %v, want %v", tc.tenant, entry.ID, entry.Editable, want)
			}
		}
	}
}

func TestResolve_OrphanOverrideBecomesNetNew(t *testing.T) {
	src := newFakeSource()
	// No global entry ex_gone exists anymore.
	src.addTenant("T1", models.RawRecord{
		ID:          "ex_orphan",
		CatalogType: models.CatalogTypeExercise,
		Name:        "Landmine Press",
		Category:    "shoulders",
		OverridesID: "ex_gone",
	})

	engine := NewEngine(src, NewGate(nil))
	merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
	if err != nil {
		t.Fatalf("orphan override must not fail resolution: %v", err)
	}

	count := 0
	for _, entry := range merged {
		if entry.ID == "ex_orphan" {
			count++
			if entry.Origin != models.OriginTenant {
				t.Errorf("orphan override origin = %q, want tenant", entry.Origin)
			}
		}
	}
	if count != 1 {
		t.Fatalf("orphan override appeared %d times, want exactly once", count)
	}
}

func TestResolve_DeterministicOrdering(t *testing.T) {
	src := newFakeSource()
	src.addGlobal(
		exerciseRecord("ex_b", "squat", "quads"),
		exerciseRecord("ex_a", "Squat", "quads"),
		exerciseRecord("ex_c", "Bench Press", "chest"),
	)
	engine := NewEngine(src, NewGate(nil))

	first, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	second, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if len(first) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(first))
	}
	// Case-insensitive by name, id tiebreak: Bench Press, then the two squats by id.
	wantOrder := []string{"ex_c", "ex_a", "ex_b"}
	for i, want := range wantOrder {
		if first[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, first[i].ID, want)
		}
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("resolution not idempotent at position %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestResolve_LocalCategoryFiltersThroughCrosswalk(t *testing.T) {
	src := newFakeSource()
	src.addGlobal(
		exerciseRecord("ex_push", "Bench Press", "chest"),
		exerciseRecord("ex_pull", "Barbell Row", "back"),
		exerciseRecord("ex_core", "Plank", "core"),
	)
	engine := NewEngine(src, NewGate(nil))

	push, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "Push")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(push) != 1 || push[0].ID != "ex_push" {
		t.Fatalf("Push view = %v, want only ex_push", push)
	}

	// core crosswalks to both Core and Conditioning.
	conditioning, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "Conditioning")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, ok := findByID(conditioning, "ex_core"); !ok {
		t.Fatalf("core entry missing from Conditioning view")
	}
}

func TestResolve_UnmappedGlobalCategoryIsInvisible(t *testing.T) {
	src := newFakeSource()
	src.addGlobal(exerciseRecord("ex_odd", "Neck Curl", "neck")) // no crosswalk row

	engine := NewEngine(src, NewGate(nil))
	for _, local := range []string{"Push", "Pull", "Legs", "Core", "Conditioning"} {
		merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, local)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if _, ok := findByID(merged, "ex_odd"); ok {
			t.Errorf("entry with unmapped category visible under %s", local)
		}
	}

	// Without a category filter the entry is still part of the catalog.
	all, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, ok := findByID(all, "ex_odd"); !ok {
		t.Fatalf("unfiltered view must still contain the entry")
	}
}

func TestResolve_FetchFailureYieldsNoPartialMerge(t *testing.T) {
	for name, install := range map[string]func(*fakeSource, error){
		"global":   func(f *fakeSource, err error) { f.failGlobal = err },
		"tenant":   func(f *fakeSource, err error) { f.failTenant = err },
		"settings": func(f *fakeSource, err error) { f.failSettings = err },
	} {
		src := newFakeSource()
		src.addGlobal(exerciseRecord("ex_1", "Squat", "quads"))
		install(src, errors.New("connection refused"))

		engine := NewEngine(src, NewGate(nil))
		merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("%s fetch failure: err = %v, want ErrSourceUnavailable", name, err)
		}
		if merged != nil {
			t.Errorf("%s fetch failure: got partial merge of %d entries", name, len(merged))
		}
	}
}

func TestResolve_UninitializedDatabaseIsSourceUnavailable(t *testing.T) {
	// main keeps the process running when the startup DB connection fails
	// and wires the nil database straight into the engine. Resolution must
	// answer with an error, not bring the process down.
	var database *db.Database
	engine := NewEngine(database, NewGate(nil))

	merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if merged != nil {
		t.Fatalf("expected no result, got %d entries", len(merged))
	}
}

func TestResolve_FoodCrosswalkManyToMany(t *testing.T) {
	src := newFakeSource()
	src.addGlobal(models.RawRecord{
		ID:          "fd_1",
		CatalogType: models.CatalogTypeFood,
		Name:        "Lenticchie",
		Category:    "legumi",
		Facets:      map[string]string{"category": "legumi"},
	})
	engine := NewEngine(src, NewGate(nil))

	// A legume shows up under both courses it crosswalks to.
	for _, course := range []string{"Primi", "Secondi"} {
		merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeFood, course)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if _, ok := findByID(merged, "fd_1"); !ok {
			t.Errorf("legume entry missing from %s view", course)
		}
	}

	merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeFood, "Contorni")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(merged) != 0 {
		t.Fatalf("Contorni view should be empty, got %d entries", len(merged))
	}
}

func TestResolve_SortIsCaseInsensitive(t *testing.T) {
	src := newFakeSource()
	src.addGlobal(
		exerciseRecord("ex_1", "zercher squat", "quads"),
		exerciseRecord("ex_2", "Air Squat", "quads"),
	)
	engine := NewEngine(src, NewGate(nil))
	merged, err := engine.Resolve(context.Background(), "T1", models.CatalogTypeExercise, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !strings.EqualFold(merged[0].DisplayName, "air squat") {
		t.Fatalf("expected Air Squat first, got %q", merged[0].DisplayName)
	}
}
