package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/logging"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
	"golang.org/x/sync/errgroup"
)

// Engine merges the global shared catalog with a tenant's private catalog
// into one logical view. Every resolution pass starts from fresh snapshots;
// the engine holds no mutable state, so concurrent passes never interfere.
type Engine struct {
	source Source
	gate   *Gate
}

// NewEngine wires the engine to its source adapter and permission gate.
func NewEngine(source Source, gate *Gate) *Engine {
	return &Engine{source: source, gate: gate}
}

// Resolve fetches the three inputs of a resolution pass concurrently and
// merges them. localCategory filters the view by the tenant-facing taxonomy;
// pass "" to accept every category. The result is either complete or an
// error, never a partial merge: if any fetch fails the pass is abandoned
// and the failure is surfaced as ErrSourceUnavailable.
func (e *Engine) Resolve(ctx context.Context, tenantID string, ct models.CatalogType, localCategory string) ([]models.CatalogEntry, error) {
	var (
		global   []models.RawRecord
		tenant   []models.RawRecord
		settings models.TenantCatalogSettings
	)

	// The three reads are independent; resolution must not proceed until
	// all of them have completed.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		global, err = e.source.FetchGlobalCatalog(gctx, ct)
		if err != nil {
			return fmt.Errorf("%w: global catalog: %v", ErrSourceUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tenant, err = e.source.FetchTenantCatalog(gctx, tenantID, ct)
		if err != nil {
			return fmt.Errorf("%w: tenant catalog: %v", ErrSourceUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = e.source.FetchTenantSettings(gctx, tenantID, ct)
		if err != nil {
			return fmt.Errorf("%w: tenant settings: %v", ErrSourceUnavailable, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return e.merge(tenantID, ct, localCategory, global, tenant, settings), nil
}

// merge is the pure core of a resolution pass. It builds the merged catalog
// from scratch: shadowing, editability and ordering are all recomputed here
// on every call.
func (e *Engine) merge(tenantID string, ct models.CatalogType, localCategory string, global, tenant []models.RawRecord, settings models.TenantCatalogSettings) []models.CatalogEntry {
	xwalk := CrosswalkFor(ct)
	canEditShared := e.gate.CanEditShared(tenantID)

	inCategory := func(globalCategory string) bool {
		if localCategory == "" {
			return true
		}
		return xwalk.MapsTo(globalCategory, localCategory)
	}

	// Overrides shadow global records wholesale: the global record with the
	// named id is dropped, not layered field-by-field.
	shadowed := make(map[string]struct{}, len(tenant))
	for _, rec := range tenant {
		if rec.OverridesID != "" {
			shadowed[rec.OverridesID] = struct{}{}
		}
	}

	merged := make([]models.CatalogEntry, 0, len(global)+len(tenant))

	if settings.UseSharedCatalog {
		for _, rec := range global {
			if !inCategory(rec.Category) {
				continue
			}
			if _, ok := shadowed[rec.ID]; ok {
				continue
			}
			entry := rec.Normalize()
			entry.Origin = models.OriginGlobal
			entry.Editable = canEditShared
			merged = append(merged, entry)
		}
	}

	globalIDs := make(map[string]struct{}, len(global))
	for _, rec := range global {
		globalIDs[rec.ID] = struct{}{}
	}

	for _, rec := range tenant {
		if !inCategory(rec.Category) {
			continue
		}
		if rec.OverridesID != "" {
			if _, ok := globalIDs[rec.OverridesID]; !ok {
				// The override target disappeared upstream. The record
				// stays in the view as a net-new tenant entry.
				logging.LogKV("warn", "orphan override kept as net-new entry", map[string]interface{}{
					"tenant_id":    tenantID,
					"catalog_type": string(ct),
					"entry_id":     rec.ID,
					"overrides_id": rec.OverridesID,
				})
			}
		}
		entry := rec.Normalize()
		entry.Origin = models.OriginTenant
		entry.Editable = true
		merged = append(merged, entry)
	}

	sort.Slice(merged, func(i, j int) bool {
		a := strings.ToLower(merged[i].DisplayName)
		b := strings.ToLower(merged[j].DisplayName)
		if a != b {
			return a < b
		}
		return merged[i].ID < merged[j].ID
	})

	return merged
}

// Settings reads a tenant's per-catalog settings through the source adapter.
func (e *Engine) Settings(ctx context.Context, tenantID string, ct models.CatalogType) (models.TenantCatalogSettings, error) {
	settings, err := e.source.FetchTenantSettings(ctx, tenantID, ct)
	if err != nil {
		return models.TenantCatalogSettings{}, fmt.Errorf("%w: tenant settings: %v", ErrSourceUnavailable, err)
	}
	return settings, nil
}

// CanEditShared exposes the gate verdict for UI affordances. Advisory only:
// the Mutation Coordinator re-checks the gate at write time.
func (e *Engine) CanEditShared(tenantID string) bool {
	return e.gate.CanEditShared(tenantID)
}
