package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
)

// fakeSource is an in-memory source adapter for engine and coordinator
// tests. Fetches can be forced to fail per source to exercise the
// all-or-nothing resolution contract.
type fakeSource struct {
	mu sync.Mutex

	global   map[models.CatalogType][]models.RawRecord
	tenant   map[string]map[models.CatalogType][]models.RawRecord
	settings map[string]models.TenantCatalogSettings

	failGlobal   error
	failTenant   error
	failSettings error
	failSync     error
	failWrite    error

	syncCalls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		global:   map[models.CatalogType][]models.RawRecord{},
		tenant:   map[string]map[models.CatalogType][]models.RawRecord{},
		settings: map[string]models.TenantCatalogSettings{},
	}
}

func settingsKey(tenantID string, ct models.CatalogType) string {
	return tenantID + "/" + string(ct)
}

func (f *fakeSource) addGlobal(recs ...models.RawRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range recs {
		f.global[rec.CatalogType] = append(f.global[rec.CatalogType], rec)
	}
}

func (f *fakeSource) addTenant(tenantID string, recs ...models.RawRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tenant[tenantID] == nil {
		f.tenant[tenantID] = map[models.CatalogType][]models.RawRecord{}
	}
	for _, rec := range recs {
		f.tenant[tenantID][rec.CatalogType] = append(f.tenant[tenantID][rec.CatalogType], rec)
	}
}

func (f *fakeSource) FetchGlobalCatalog(ctx context.Context, ct models.CatalogType) ([]models.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGlobal != nil {
		return nil, f.failGlobal
	}
	return append([]models.RawRecord(nil), f.global[ct]...), nil
}

func (f *fakeSource) FetchTenantCatalog(ctx context.Context, tenantID string, ct models.CatalogType) ([]models.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTenant != nil {
		return nil, f.failTenant
	}
	return append([]models.RawRecord(nil), f.tenant[tenantID][ct]...), nil
}

func (f *fakeSource) FetchTenantSettings(ctx context.Context, tenantID string, ct models.CatalogType) (models.TenantCatalogSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSettings != nil {
		return models.TenantCatalogSettings{}, f.failSettings
	}
	if s, ok := f.settings[settingsKey(tenantID, ct)]; ok {
		return s, nil
	}
	return models.TenantCatalogSettings{UseSharedCatalog: true}, nil
}

func (f *fakeSource) writeErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failWrite
}

func (f *fakeSource) InsertGlobalRecord(ctx context.Context, rec models.RawRecord) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	f.addGlobal(rec)
	return nil
}

func (f *fakeSource) UpdateGlobalRecord(ctx context.Context, rec models.RawRecord) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.global[rec.CatalogType]
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			return nil
		}
	}
	return fmt.Errorf("global entry %s not found", rec.ID)
}

func (f *fakeSource) DeleteGlobalRecord(ctx context.Context, ct models.CatalogType, id string) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.global[ct]
	for i := range recs {
		if recs[i].ID == id {
			f.global[ct] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("global entry %s not found", id)
}

func (f *fakeSource) InsertTenantRecord(ctx context.Context, tenantID string, rec models.RawRecord) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	f.addTenant(tenantID, rec)
	return nil
}

func (f *fakeSource) UpdateTenantRecord(ctx context.Context, tenantID string, rec models.RawRecord) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.tenant[tenantID][rec.CatalogType]
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			return nil
		}
	}
	return fmt.Errorf("tenant entry %s not found", rec.ID)
}

func (f *fakeSource) DeleteTenantRecord(ctx context.Context, tenantID string, ct models.CatalogType, id string) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.tenant[tenantID][ct]
	for i := range recs {
		if recs[i].ID == id {
			f.tenant[tenantID][ct] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("tenant entry %s not found", id)
}

func (f *fakeSource) SyncMirroredDisplayName(ctx context.Context, ct models.CatalogType, globalID, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSync != nil {
		return f.failSync
	}
	f.syncCalls = append(f.syncCalls, globalID+"="+displayName)
	return nil
}

func (f *fakeSource) SaveTenantSettings(ctx context.Context, tenantID string, ct models.CatalogType, settings models.TenantCatalogSettings) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[settingsKey(tenantID, ct)] = settings
	return nil
}

func (f *fakeSource) globalByID(ct models.CatalogType, id string) (models.RawRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.global[ct] {
		if rec.ID == id {
			return rec, true
		}
	}
	return models.RawRecord{}, false
}
