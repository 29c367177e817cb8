package catalog

import (
	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
)

// Crosswalk is the static, directed many-to-many mapping from the global
// category taxonomy to the tenant-facing local taxonomy. It is pure and
// total: an unknown global category yields an empty slice, never an error.
//
// A global category absent from the table makes its entries invisible under
// every local view. That is deliberate, reviewed behavior, not a fallback
// to an "uncategorized" bucket.
type Crosswalk struct {
	table map[string][]string
}

// NewCrosswalk builds a crosswalk from a literal table. The table is copied
// so callers cannot mutate it afterwards.
func NewCrosswalk(table map[string][]string) *Crosswalk {
	copied := make(map[string][]string, len(table))
	for global, locals := range table {
		copied[global] = append([]string(nil), locals...)
	}
	return &Crosswalk{table: copied}
}

// LocalCategoriesFor returns the ordered local categories a global category
// maps to. Unknown keys yield an empty slice.
func (cw *Crosswalk) LocalCategoriesFor(globalCategory string) []string {
	locals, ok := cw.table[globalCategory]
	if !ok {
		return []string{}
	}
	return append([]string(nil), locals...)
}

// MapsTo reports whether globalCategory is visible under localCategory.
func (cw *Crosswalk) MapsTo(globalCategory, localCategory string) bool {
	for _, local := range cw.table[globalCategory] {
		if local == localCategory {
			return true
		}
	}
	return false
}

// ExerciseCrosswalk maps the platform's global muscle-group taxonomy onto
// the session-focus taxonomy tenants program against. Review as a table:
// several global groups feed one local focus, and core/full-body feed two.
func ExerciseCrosswalk() *Crosswalk {
	return NewCrosswalk(map[string][]string{
		"chest":      {"Push"},
		"shoulders":  {"Push"},
		"triceps":    {"Push"},
		"back":       {"Pull"},
		"lats":       {"Pull"},
		"biceps":     {"Pull"},
		"quads":      {"Legs"},
		"hamstrings": {"Legs"},
		"glutes":     {"Legs"},
		"calves":     {"Legs"},
		"core":       {"Core", "Conditioning"},
		"cardio":     {"Conditioning"},
		"full_body":  {"Conditioning", "Legs"},
	})
}

// FoodCrosswalk maps the global ingredient taxonomy onto the course-based
// local taxonomy used in meal plans. Legumes appear under both Primi and
// Secondi; several global categories contribute to Secondi.
func FoodCrosswalk() *Crosswalk {
	return NewCrosswalk(map[string][]string{
		"cereali":   {"Primi"},
		"legumi":    {"Primi", "Secondi"},
		"carne":     {"Secondi"},
		"pesce":     {"Secondi"},
		"uova":      {"Colazione", "Secondi"},
		"latticini": {"Colazione", "Secondi"},
		"frutta":    {"Colazione", "Spuntini"},
		"verdura":   {"Contorni"},
		"grassi":    {"Condimenti"},
		"dolci":     {"Spuntini"},
	})
}

// CrosswalkFor returns the crosswalk for a catalog type.
func CrosswalkFor(ct models.CatalogType) *Crosswalk {
	if ct == models.CatalogTypeFood {
		return FoodCrosswalk()
	}
	return ExerciseCrosswalk()
}
