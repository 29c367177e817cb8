package catalog

import (
	"context"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
)

// Source is the Catalog Source Adapter: it fetches raw records for the
// global shared catalog, a tenant's private catalog, and a tenant's
// per-catalog settings, and routes writes to the right physical store.
// The engine does not know or care how data is stored.
type Source interface {
	FetchGlobalCatalog(ctx context.Context, ct models.CatalogType) ([]models.RawRecord, error)
	FetchTenantCatalog(ctx context.Context, tenantID string, ct models.CatalogType) ([]models.RawRecord, error)
	FetchTenantSettings(ctx context.Context, tenantID string, ct models.CatalogType) (models.TenantCatalogSettings, error)

	InsertGlobalRecord(ctx context.Context, rec models.RawRecord) error
	UpdateGlobalRecord(ctx context.Context, rec models.RawRecord) error
	DeleteGlobalRecord(ctx context.Context, ct models.CatalogType, id string) error

	InsertTenantRecord(ctx context.Context, tenantID string, rec models.RawRecord) error
	UpdateTenantRecord(ctx context.Context, tenantID string, rec models.RawRecord) error
	DeleteTenantRecord(ctx context.Context, tenantID string, ct models.CatalogType, id string) error

	// SyncMirroredDisplayName refreshes the denormalized display-name copies
	// that tenant overrides keep for the shared entry they shadow.
	SyncMirroredDisplayName(ctx context.Context, ct models.CatalogType, globalID, displayName string) error

	SaveTenantSettings(ctx context.Context, tenantID string, ct models.CatalogType, settings models.TenantCatalogSettings) error
}
