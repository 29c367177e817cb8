package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
	"github.com/google/uuid"
)

// Intent says which physical store a create targets.
type Intent string

const (
	IntentSharedCatalog Intent = "shared"
	IntentTenantPrivate Intent = "private"
)

// Coordinator routes create/update/delete requests to the correct physical
// store and enforces the shared-edit gate at write time. It keeps no cache:
// after any successful mutation the caller must resolve again before
// trusting query results.
type Coordinator struct {
	source Source
	gate   *Gate
}

// NewCoordinator wires the coordinator to the source adapter and gate.
func NewCoordinator(source Source, gate *Gate) *Coordinator {
	return &Coordinator{source: source, gate: gate}
}

// Create validates the entry and writes it to the store named by intent.
// Creating a new shared entry is not identity-gated; only edits and deletes
// of existing shared entries are. Returns the new entry's id.
func (c *Coordinator) Create(ctx context.Context, actor models.Actor, entry models.CatalogEntry, intent Intent) (string, error) {
	if err := validateEntry(entry); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	entry.ID = entry.CatalogType.IDPrefix() + uuid.NewString()
	entry.CreatedBy = actor.TenantID
	entry.UpdatedBy = actor.TenantID
	entry.CreatedAt = now
	entry.UpdatedAt = now

	rec := models.RawFromEntry(entry)

	switch intent {
	case IntentSharedCatalog:
		rec.OverridesID = "" // shared entries never shadow anything
		if err := c.source.InsertGlobalRecord(ctx, rec); err != nil {
			return "", fmt.Errorf("%w: create shared entry: %v", ErrSourceUnavailable, err)
		}
	case IntentTenantPrivate:
		if err := c.source.InsertTenantRecord(ctx, actor.TenantID, rec); err != nil {
			return "", fmt.Errorf("%w: create tenant entry: %v", ErrSourceUnavailable, err)
		}
	default:
		return "", &ValidationError{Field: "intent", Reason: fmt.Sprintf("unknown intent %q", intent)}
	}

	return entry.ID, nil
}

// Update routes on the origin of the current entry, never on caller intent.
// Shared-origin entries require the actor's tenant to be on the allow-list;
// the gate is re-checked here regardless of what any UI decided earlier.
func (c *Coordinator) Update(ctx context.Context, actor models.Actor, id string, patch models.EntryPatch, current models.CatalogEntry) error {
	next := patch.Apply(current)
	next.ID = id
	if err := validateEntry(next); err != nil {
		return err
	}
	next.UpdatedBy = actor.TenantID
	next.UpdatedAt = time.Now().UTC()
	rec := models.RawFromEntry(next)

	switch current.Origin {
	case models.OriginGlobal:
		if !c.gate.CanEditShared(actor.TenantID) {
			return fmt.Errorf("%w: tenant %s may not update shared entry %s", ErrPermissionDenied, actor.TenantID, id)
		}
		if err := c.source.UpdateGlobalRecord(ctx, rec); err != nil {
			return fmt.Errorf("%w: update shared entry %s: %v", ErrSourceUnavailable, id, err)
		}
		// Tenant overrides mirror the shared display name; keep the copies
		// in step with the primary write.
		if next.DisplayName != current.DisplayName {
			if err := c.source.SyncMirroredDisplayName(ctx, next.CatalogType, id, next.DisplayName); err != nil {
				return fmt.Errorf("%w: %v", ErrNameSyncIncomplete, err)
			}
		}
		return nil
	case models.OriginTenant:
		if err := c.source.UpdateTenantRecord(ctx, actor.TenantID, rec); err != nil {
			return fmt.Errorf("%w: update tenant entry %s: %v", ErrSourceUnavailable, id, err)
		}
		return nil
	default:
		return &ValidationError{Field: "origin", Reason: fmt.Sprintf("unknown origin %q", current.Origin)}
	}
}

// Delete follows the same routing and gating rule as Update.
func (c *Coordinator) Delete(ctx context.Context, actor models.Actor, current models.CatalogEntry) error {
	switch current.Origin {
	case models.OriginGlobal:
		if !c.gate.CanEditShared(actor.TenantID) {
			return fmt.Errorf("%w: tenant %s may not delete shared entry %s", ErrPermissionDenied, actor.TenantID, current.ID)
		}
		if err := c.source.DeleteGlobalRecord(ctx, current.CatalogType, current.ID); err != nil {
			return fmt.Errorf("%w: delete shared entry %s: %v", ErrSourceUnavailable, current.ID, err)
		}
		return nil
	case models.OriginTenant:
		if err := c.source.DeleteTenantRecord(ctx, actor.TenantID, current.CatalogType, current.ID); err != nil {
			return fmt.Errorf("%w: delete tenant entry %s: %v", ErrSourceUnavailable, current.ID, err)
		}
		return nil
	default:
		return &ValidationError{Field: "origin", Reason: fmt.Sprintf("unknown origin %q", current.Origin)}
	}
}

// SetUseSharedCatalog persists the tenant's shared-catalog toggle. The next
// resolution pass picks it up; nothing is cached in between.
func (c *Coordinator) SetUseSharedCatalog(ctx context.Context, tenantID string, ct models.CatalogType, use bool) error {
	settings := models.TenantCatalogSettings{UseSharedCatalog: use}
	if err := c.source.SaveTenantSettings(ctx, tenantID, ct, settings); err != nil {
		return fmt.Errorf("%w: save catalog settings for tenant %s: %v", ErrSourceUnavailable, tenantID, err)
	}
	return nil
}

// validateEntry rejects payloads missing required fields before any write.
func validateEntry(entry models.CatalogEntry) error {
	if strings.TrimSpace(entry.DisplayName) == "" {
		return &ValidationError{Field: "display_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(entry.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if _, err := models.ParseCatalogType(string(entry.CatalogType)); err != nil {
		return &ValidationError{Field: "catalog_type", Reason: err.Error()}
	}
	return nil
}
