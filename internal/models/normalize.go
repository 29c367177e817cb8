package models

import (
	"time"
)

// RawRecord is the loosely-typed shape a catalog store hands back. Records
// written over several schema generations carry historical aliases for the
// same concept (display name lived in name, then name_it, then title), so
// normalization happens exactly once here, at ingestion. Nothing past this
// point branches on alias presence.
type RawRecord struct {
	ID          string            `json:"id"`
	CatalogType CatalogType       `json:"catalog_type"`
	Name        string            `json:"name,omitempty"`
	NameIt      string            `json:"name_it,omitempty"`
	Title       string            `json:"title,omitempty"`
	Category    string            `json:"category"`
	Facets      map[string]string `json:"facets"`
	OverridesID string            `json:"overrides_id,omitempty"`
	MediaRef    string            `json:"media_ref,omitempty"`
	CreatedBy   string            `json:"created_by,omitempty"`
	UpdatedBy   string            `json:"updated_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// displayName resolves the historical alias chain. Newest field wins.
func (r RawRecord) displayName() string {
	if r.Name != "" {
		return r.Name
	}
	if r.NameIt != "" {
		return r.NameIt
	}
	return r.Title
}

// Normalize converts a raw store record into the canonical CatalogEntry
// shape. Origin and Editable are resolution concerns and are left zero here.
func (r RawRecord) Normalize() CatalogEntry {
	facets := make(map[string]string, len(r.Facets))
	for k, v := range r.Facets {
		facets[k] = v
	}
	return CatalogEntry{
		ID:          r.ID,
		CatalogType: r.CatalogType,
		DisplayName: r.displayName(),
		Category:    r.Category,
		Facets:      facets,
		OverridesID: r.OverridesID,
		MediaRef:    r.MediaRef,
		CreatedBy:   r.CreatedBy,
		UpdatedBy:   r.UpdatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// RawFromEntry converts a canonical entry back into the store shape used for
// writes. Writes always populate the current-generation name field only.
func RawFromEntry(e CatalogEntry) RawRecord {
	facets := make(map[string]string, len(e.Facets))
	for k, v := range e.Facets {
		facets[k] = v
	}
	return RawRecord{
		ID:          e.ID,
		CatalogType: e.CatalogType,
		Name:        e.DisplayName,
		Category:    e.Category,
		Facets:      facets,
		OverridesID: e.OverridesID,
		MediaRef:    e.MediaRef,
		CreatedBy:   e.CreatedBy,
		UpdatedBy:   e.UpdatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
