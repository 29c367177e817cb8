package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
)

// The db package implements the catalog source adapter on Postgres. Global
// shared entries and tenant-private entries live in separate tables; tenant
// overrides reference the shared entry they shadow through overrides_id and
// keep a denormalized copy of its display name in mirrored_display_name.

// FetchGlobalCatalog returns the raw records of the platform-wide catalog.
func (db *Database) FetchGlobalCatalog(ctx context.Context, ct models.CatalogType) ([]models.RawRecord, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}
	query := `
        SELECT
            id,
            catalog_type,
            COALESCE(display_name, '') as display_name,
            COALESCE(name_it, '') as name_it,
            COALESCE(title, '') as title,
            COALESCE(category, '') as category,
            COALESCE(facets, '{}'::jsonb) as facets,
            COALESCE(media_ref, '') as media_ref,
            COALESCE(created_by, '') as created_by,
            COALESCE(updated_by, '') as updated_by,
            created_at,
            updated_at
        FROM global_catalog_entries
        WHERE catalog_type = $1
        ORDER BY id
    `
	rows, err := db.Pool.Query(ctx, query, string(ct))
	if err != nil {
		return nil, fmt.Errorf("failed to query global catalog: %w", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for rows.Next() {
		var rec models.RawRecord
		var facetsJSON []byte
		err := rows.Scan(
			&rec.ID,
			&rec.CatalogType,
			&rec.Name,
			&rec.NameIt,
			&rec.Title,
			&rec.Category,
			&facetsJSON,
			&rec.MediaRef,
			&rec.CreatedBy,
			&rec.UpdatedBy,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan global entry: %w", err)
		}
		if err := json.Unmarshal(facetsJSON, &rec.Facets); err != nil {
			return nil, fmt.Errorf("failed to decode facets for global entry %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating global entries: %w", err)
	}
	return records, nil
}

// FetchTenantCatalog returns the raw records of one tenant's private catalog.
func (db *Database) FetchTenantCatalog(ctx context.Context, tenantID string, ct models.CatalogType) ([]models.RawRecord, error) {
	if err := db.ready(); err != nil {
		return nil, err
	}
	query := `
        SELECT
            id,
            catalog_type,
            COALESCE(display_name, '') as display_name,
            COALESCE(name_it, '') as name_it,
            COALESCE(title, '') as title,
            COALESCE(category, '') as category,
            COALESCE(facets, '{}'::jsonb) as facets,
            COALESCE(overrides_id, '') as overrides_id,
            COALESCE(media_ref, '') as media_ref,
            COALESCE(created_by, '') as created_by,
            COALESCE(updated_by, '') as updated_by,
            created_at,
            updated_at
        FROM tenant_catalog_entries
        WHERE tenant_id = $1 AND catalog_type = $2
        ORDER BY id
    `
	rows, err := db.Pool.Query(ctx, query, tenantID, string(ct))
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant catalog: %w", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for rows.Next() {
		var rec models.RawRecord
		var facetsJSON []byte
		err := rows.Scan(
			&rec.ID,
			&rec.CatalogType,
			&rec.Name,
			&rec.NameIt,
			&rec.Title,
			&rec.Category,
			&facetsJSON,
			&rec.OverridesID,
			&rec.MediaRef,
			&rec.CreatedBy,
			&rec.UpdatedBy,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant entry: %w", err)
		}
		if err := json.Unmarshal(facetsJSON, &rec.Facets); err != nil {
			return nil, fmt.Errorf("failed to decode facets for tenant entry %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant entries: %w", err)
	}
	return records, nil
}

// FetchTenantSettings returns the tenant's per-catalog settings. Tenants
// that never toggled anything get the default: shared catalog on.
func (db *Database) FetchTenantSettings(ctx context.Context, tenantID string, ct models.CatalogType) (models.TenantCatalogSettings, error) {
	settings := models.TenantCatalogSettings{UseSharedCatalog: true}
	if err := db.ready(); err != nil {
		return settings, err
	}
	query := `
        SELECT use_shared_catalog
        FROM tenant_catalog_settings
        WHERE tenant_id = $1 AND catalog_type = $2
    `
	rows, err := db.Pool.Query(ctx, query, tenantID, string(ct))
	if err != nil {
		return settings, fmt.Errorf("failed to query tenant settings: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&settings.UseSharedCatalog); err != nil {
			return settings, fmt.Errorf("failed to scan tenant settings: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return settings, fmt.Errorf("error reading tenant settings: %w", err)
	}
	return settings, nil
}

// InsertGlobalRecord writes a new entry into the shared catalog.
func (db *Database) InsertGlobalRecord(ctx context.Context, rec models.RawRecord) error {
	if err := db.ready(); err != nil {
		return err
	}
	facetsJSON, err := json.Marshal(rec.Facets)
	if err != nil {
		return fmt.Errorf("failed to encode facets: %w", err)
	}
	query := `
        INSERT INTO global_catalog_entries
            (id, catalog_type, display_name, category, facets, media_ref, created_by, updated_by, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err = db.Pool.Exec(ctx, query,
		rec.ID,
		string(rec.CatalogType),
		rec.Name,
		rec.Category,
		facetsJSON,
		nullIfEmpty(rec.MediaRef),
		rec.CreatedBy,
		rec.UpdatedBy,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert global entry: %w", err)
	}
	return nil
}

// UpdateGlobalRecord updates an existing shared entry in place.
func (db *Database) UpdateGlobalRecord(ctx context.Context, rec models.RawRecord) error {
	if err := db.ready(); err != nil {
		return err
	}
	facetsJSON, err := json.Marshal(rec.Facets)
	if err != nil {
		return fmt.Errorf("failed to encode facets: %w", err)
	}
	query := `
        UPDATE global_catalog_entries
        SET
            display_name = $3,
            category = $4,
            facets = $5,
            media_ref = $6,
            updated_by = $7,
            updated_at = $8
        WHERE id = $1 AND catalog_type = $2
    `
	result, err := db.Pool.Exec(ctx, query,
		rec.ID,
		string(rec.CatalogType),
		rec.Name,
		rec.Category,
		facetsJSON,
		nullIfEmpty(rec.MediaRef),
		rec.UpdatedBy,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update global entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("global entry %s not found", rec.ID)
	}
	return nil
}

// DeleteGlobalRecord removes a shared entry permanently.
func (db *Database) DeleteGlobalRecord(ctx context.Context, ct models.CatalogType, id string) error {
	if err := db.ready(); err != nil {
		return err
	}
	result, err := db.Pool.Exec(ctx,
		"DELETE FROM global_catalog_entries WHERE id = $1 AND catalog_type = $2",
		id, string(ct))
	if err != nil {
		return fmt.Errorf("failed to delete global entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("global entry %s not found", id)
	}
	return nil
}

// InsertTenantRecord writes a new entry into one tenant's private catalog.
func (db *Database) InsertTenantRecord(ctx context.Context, tenantID string, rec models.RawRecord) error {
	if err := db.ready(); err != nil {
		return err
	}
	facetsJSON, err := json.Marshal(rec.Facets)
	if err != nil {
		return fmt.Errorf("failed to encode facets: %w", err)
	}
	query := `
        INSERT INTO tenant_catalog_entries
            (tenant_id, id, catalog_type, display_name, category, facets, overrides_id, media_ref, created_by, updated_by, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err = db.Pool.Exec(ctx, query,
		tenantID,
		rec.ID,
		string(rec.CatalogType),
		rec.Name,
		rec.Category,
		facetsJSON,
		nullIfEmpty(rec.OverridesID),
		nullIfEmpty(rec.MediaRef),
		rec.CreatedBy,
		rec.UpdatedBy,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tenant entry: %w", err)
	}
	return nil
}

// UpdateTenantRecord updates an entry owned by the tenant.
func (db *Database) UpdateTenantRecord(ctx context.Context, tenantID string, rec models.RawRecord) error {
	if err := db.ready(); err != nil {
		return err
	}
	facetsJSON, err := json.Marshal(rec.Facets)
	if err != nil {
		return fmt.Errorf("failed to encode facets: %w", err)
	}
	query := `
        UPDATE tenant_catalog_entries
        SET
            display_name = $4,
            category = $5,
            facets = $6,
            media_ref = $7,
            updated_by = $8,
            updated_at = $9
        WHERE tenant_id = $1 AND id = $2 AND catalog_type = $3
    `
	result, err := db.Pool.Exec(ctx, query,
		tenantID,
		rec.ID,
		string(rec.CatalogType),
		rec.Name,
		rec.Category,
		facetsJSON,
		nullIfEmpty(rec.MediaRef),
		rec.UpdatedBy,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tenant entry %s not found", rec.ID)
	}
	return nil
}

// DeleteTenantRecord removes an entry from one tenant's private catalog.
func (db *Database) DeleteTenantRecord(ctx context.Context, tenantID string, ct models.CatalogType, id string) error {
	if err := db.ready(); err != nil {
		return err
	}
	result, err := db.Pool.Exec(ctx,
		"DELETE FROM tenant_catalog_entries WHERE tenant_id = $1 AND id = $2 AND catalog_type = $3",
		tenantID, id, string(ct))
	if err != nil {
		return fmt.Errorf("failed to delete tenant entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tenant entry %s not found", id)
	}
	return nil
}

// SyncMirroredDisplayName refreshes the denormalized display-name copies
// held by every tenant override of the given shared entry, across tenants.
func (db *Database) SyncMirroredDisplayName(ctx context.Context, ct models.CatalogType, globalID, displayName string) error {
	if err := db.ready(); err != nil {
		return err
	}
	_, err := db.Pool.Exec(ctx, `
        UPDATE tenant_catalog_entries
        SET mirrored_display_name = $3, updated_at = NOW()
        WHERE catalog_type = $1 AND overrides_id = $2
    `, string(ct), globalID, displayName)
	if err != nil {
		return fmt.Errorf("failed to sync mirrored display name for %s: %w", globalID, err)
	}
	return nil
}

// SaveTenantSettings upserts the tenant's per-catalog settings row.
func (db *Database) SaveTenantSettings(ctx context.Context, tenantID string, ct models.CatalogType, settings models.TenantCatalogSettings) error {
	if err := db.ready(); err != nil {
		return err
	}
	query := `
        INSERT INTO tenant_catalog_settings (tenant_id, catalog_type, use_shared_catalog, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (tenant_id, catalog_type)
        DO UPDATE SET use_shared_catalog = EXCLUDED.use_shared_catalog, updated_at = NOW()
    `
	_, err := db.Pool.Exec(ctx, query, tenantID, string(ct), settings.UseSharedCatalog)
	if err != nil {
		return fmt.Errorf("failed to save tenant settings: %w", err)
	}
	return nil
}

// nullIfEmpty maps "" to NULL for optional text columns.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
