package models

import (
	"fmt"
	"time"
)

// CatalogType identifies one of the two parallel catalogs the platform serves.
type CatalogType string

const (
	CatalogTypeExercise CatalogType = "exercise"
	CatalogTypeFood     CatalogType = "food"
)

// ParseCatalogType validates a catalog type coming from a URL segment.
func ParseCatalogType(s string) (CatalogType, error) {
	switch CatalogType(s) {
	case CatalogTypeExercise, CatalogTypeFood:
		return CatalogType(s), nil
	default:
		return "", fmt.Errorf("unknown catalog type %q", s)
	}
}

// IDPrefix returns the id prefix used for newly created entries of this type.
func (ct CatalogType) IDPrefix() string {
	if ct == CatalogTypeFood {
		return "fd_"
	}
	return "ex_"
}

// Origin tells which physical store a record came from before the merge.
type Origin string

const (
	OriginGlobal Origin = "global"
	OriginTenant Origin = "tenant"
)

// CatalogEntry is the unit of the merged catalog. Instances are built fresh
// on every resolution pass; Editable is derived there and never persisted.
type CatalogEntry struct {
	ID          string            `json:"id"`
	CatalogType CatalogType       `json:"catalog_type"`
	DisplayName string            `json:"display_name"`
	Category    string            `json:"category"`
	Facets      map[string]string `json:"facets"`
	Origin      Origin            `json:"origin"`
	OverridesID string            `json:"overrides_id,omitempty"`
	Editable    bool              `json:"editable"`
	MediaRef    string            `json:"media_ref,omitempty"`
	CreatedBy   string            `json:"created_by,omitempty"`
	UpdatedBy   string            `json:"updated_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// EntryPatch carries the mutable fields of an update request. Nil pointers
// mean "leave unchanged"; a nil Facets map leaves facets untouched.
type EntryPatch struct {
	DisplayName *string           `json:"display_name,omitempty"`
	Category    *string           `json:"category,omitempty"`
	Facets      map[string]string `json:"facets,omitempty"`
	MediaRef    *string           `json:"media_ref,omitempty"`
}

// Apply returns a copy of current with the patch fields applied.
func (p EntryPatch) Apply(current CatalogEntry) CatalogEntry {
	next := current
	if p.DisplayName != nil {
		next.DisplayName = *p.DisplayName
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.Facets != nil {
		next.Facets = make(map[string]string, len(p.Facets))
		for k, v := range p.Facets {
			next.Facets[k] = v
		}
	}
	if p.MediaRef != nil {
		next.MediaRef = *p.MediaRef
	}
	return next
}

// TenantCatalogSettings is the tenant-owned per-catalog configuration.
// UseSharedCatalog defaults to true for tenants that never toggled it.
type TenantCatalogSettings struct {
	UseSharedCatalog bool `json:"use_shared_catalog"`
}

// Actor identifies who performs a mutation, for write stamping.
type Actor struct {
	TenantID    string `json:"tenant_id"`
	DisplayName string `json:"display_name"`
}
