package models

import "testing"

func TestNormalize_DisplayNameAliasPrecedence(t *testing.T) {
	cases := []struct {
		raw  RawRecord
		want string
	}{
		{RawRecord{Name: "Squat", NameIt: "Accosciata", Title: "Old Squat"}, "Squat"},
		{RawRecord{NameIt: "Accosciata", Title: "Old Squat"}, "Accosciata"},
		{RawRecord{Title: "Old Squat"}, "Old Squat"},
		{RawRecord{}, ""},
	}
	for _, tc := range cases {
		if got := tc.raw.Normalize().DisplayName; got != tc.want {
			t.Errorf("display name = %q, want %q (raw %+v)", got, tc.want, tc.raw)
		}
	}
}

func TestNormalize_CopiesFacets(t *testing.T) {
	raw := RawRecord{ID: "ex_1", Name: "Squat", Facets: map[string]string{"equipment": "barbell"}}
	entry := raw.Normalize()
	raw.Facets["equipment"] = "machine"
	if entry.Facets["equipment"] != "barbell" {
		t.Fatalf("normalized entry aliases raw facets map")
	}
}

func TestNormalize_LeavesDerivedFieldsZero(t *testing.T) {
	entry := RawRecord{ID: "ex_1", Name: "Squat"}.Normalize()
	if entry.Origin != "" || entry.Editable {
		t.Fatalf("origin/editable are resolution concerns, got %q/%v", entry.Origin, entry.Editable)
	}
}

func TestRawFromEntry_WritesCurrentGenerationNameOnly(t *testing.T) {
	entry := CatalogEntry{ID: "ex_1", DisplayName: "Squat", Category: "quads"}
	rec := RawFromEntry(entry)
	if rec.Name != "Squat" {
		t.Fatalf("name = %q, want Squat", rec.Name)
	}
	if rec.NameIt != "" || rec.Title != "" {
		t.Fatalf("legacy aliases populated on write: %q / %q", rec.NameIt, rec.Title)
	}
}

func TestEntryPatch_ApplyLeavesUnsetFieldsAlone(t *testing.T) {
	current := CatalogEntry{
		ID:          "ex_1",
		DisplayName: "Squat",
		Category:    "quads",
		Facets:      map[string]string{"equipment": "barbell"},
		MediaRef:    "https://assets/squat.mp4",
	}
	name := "Back Squat"
	next := EntryPatch{DisplayName: &name}.Apply(current)

	if next.DisplayName != "Back Squat" {
		t.Errorf("display name not patched: %q", next.DisplayName)
	}
	if next.Category != "quads" || next.MediaRef != current.MediaRef {
		t.Errorf("unset fields changed: %+v", next)
	}
	if next.Facets["equipment"] != "barbell" {
		t.Errorf("facets changed without a patch: %v", next.Facets)
	}
}

func TestParseCatalogType(t *testing.T) {
	if _, err := ParseCatalogType("exercise"); err != nil {
		t.Fatalf("exercise rejected: %v", err)
	}
	if _, err := ParseCatalogType("food"); err != nil {
		t.Fatalf("food rejected: %v", err)
	}
	if _, err := ParseCatalogType("gear"); err == nil {
		t.Fatalf("unknown catalog type accepted")
	}
}
