package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/catalog"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/db"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/media"
	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
	"github.com/gin-gonic/gin"
)

// Handler holds the catalog engine, the mutation coordinator and their
// collaborators, and provides the HTTP handlers.
type Handler struct {
	db       *db.Database
	engine   *catalog.Engine
	coord    *catalog.Coordinator
	uploader *media.Uploader
}

// NewHandler creates a new handler instance.
func NewHandler(database *db.Database, engine *catalog.Engine, coord *catalog.Coordinator, uploader *media.Uploader) *Handler {
	return &Handler{db: database, engine: engine, coord: coord, uploader: uploader}
}

// Health handles GET /health and GET /ready.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database not initialized"})
		return
	}
	if err := h.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// GetEntries handles GET /catalogs/:type/entries. It runs a full resolution
// pass for the calling tenant and answers the filtered, paginated query.
// An empty page is a valid answer and is distinct from a load failure.
func (h *Handler) GetEntries(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	ct, err := models.ParseCatalogType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tenantID := c.GetString("tenant_id")
	localCategory := c.Query("category")

	merged, err := h.engine.Resolve(ctx, tenantID, ct, localCategory)
	if err != nil {
		log.Printf("[GetEntries] resolve failed for tenant %s: %v", tenantID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load catalog"})
		return
	}

	params := catalog.QueryParams{
		Text:   c.Query("q"),
		Facets: facetFilters(c),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		params.PageSize = size
	}

	c.JSON(http.StatusOK, catalog.Query(merged, params))
}

// facetFilters collects facet.<name>=<value> query parameters.
func facetFilters(c *gin.Context) map[string]string {
	filters := map[string]string{}
	for name, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(name, "facet.") || len(values) == 0 {
			continue
		}
		filters[strings.TrimPrefix(name, "facet.")] = values[0]
	}
	return filters
}

// createEntryRequest is the POST body for new catalog entries. Shared marks
// the entry for the platform-wide catalog instead of the tenant's own.
type createEntryRequest struct {
	DisplayName string            `json:"display_name"`
	Category    string            `json:"category"`
	Facets      map[string]string `json:"facets"`
	MediaRef    string            `json:"media_ref"`
	OverridesID string            `json:"overrides_id"`
	Shared      bool              `json:"shared"`
}

// CreateEntry handles POST /catalogs/:type/entries.
func (h *Handler) CreateEntry(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	ct, err := models.ParseCatalogType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	entry := models.CatalogEntry{
		CatalogType: ct,
		DisplayName: req.DisplayName,
		Category:    req.Category,
		Facets:      req.Facets,
		MediaRef:    req.MediaRef,
		OverridesID: req.OverridesID,
	}
	intent := catalog.IntentTenantPrivate
	if req.Shared {
		intent = catalog.IntentSharedCatalog
	}

	id, err := h.coord.Create(ctx, ActorFrom(c), entry, intent)
	if err != nil {
		h.respondMutationError(c, "create entry", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateEntry handles PUT /catalogs/:type/entries/:id. The destination
// store is derived from the current entry's origin, not from caller intent.
func (h *Handler) UpdateEntry(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	ct, err := models.ParseCatalogType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")

	var patch models.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	current, ok, err := h.findEntry(ctx, c.GetString("tenant_id"), ct, id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load catalog"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	if err := h.coord.Update(ctx, ActorFrom(c), id, patch, current); err != nil {
		if errors.Is(err, catalog.ErrNameSyncIncomplete) {
			// Primary write succeeded; be explicit that the mirrored
			// copies may lag.
			c.JSON(http.StatusOK, gin.H{"id": id, "warning": "entry updated, mirrored names not fully synced"})
			return
		}
		h.respondMutationError(c, "update entry", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "message": "Entry updated successfully"})
}

// DeleteEntry handles DELETE /catalogs/:type/entries/:id.
func (h *Handler) DeleteEntry(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	ct, err := models.ParseCatalogType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")

	current, ok, err := h.findEntry(ctx, c.GetString("tenant_id"), ct, id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load catalog"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	if err := h.coord.Delete(ctx, ActorFrom(c), current); err != nil {
		h.respondMutationError(c, "delete entry", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "message": "Entry deleted successfully"})
}

// UploadEntryMedia handles POST /catalogs/:type/entries/:id/media. The file
// goes to S3 (local disk in development) and only the returned URL is kept
// on the entry.
func (h *Handler) UploadEntryMedia(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second) // longer timeout for uploads
	defer cancel()

	ct, err := models.ParseCatalogType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")

	fileHeader, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'media' form field"})
		return
	}
	if fileHeader.Size > 50*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 50MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	current, ok, err := h.findEntry(ctx, c.GetString("tenant_id"), ct, id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load catalog"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	mediaRef, err := h.uploader.UploadToS3(ctx, id, fileHeader, file)
	if err != nil {
		log.Printf("S3 upload failed, falling back to local storage: %v", err)
		mediaRef, err = h.uploader.UploadToLocal(id, fileHeader, file)
		if err != nil {
			log.Printf("Local upload also failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
			return
		}
	}

	patch := models.EntryPatch{MediaRef: &mediaRef}
	if err := h.coord.Update(ctx, ActorFrom(c), id, patch, current); err != nil {
		h.respondMutationError(c, "attach media", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"media_ref": mediaRef})
}

// GetSettings handles GET /catalogs/:type/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ct, err := models.ParseCatalogType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.engine.Settings(ctx, c.GetString("tenant_id"), ct)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /catalogs/:type/settings. The next resolution
// pass sees the new toggle; nothing is cached in between.
func (h *Handler) UpdateSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ct, err := models.ParseCatalogType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var settings models.TenantCatalogSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	tenantID := c.GetString("tenant_id")
	if err := h.coord.SetUseSharedCatalog(ctx, tenantID, ct, settings.UseSharedCatalog); err != nil {
		h.respondMutationError(c, "save settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// CanEditShared handles GET /permissions/shared-edit. Advisory for UI
// affordances; writes re-check the gate independently.
func (h *Handler) CanEditShared(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"can_edit_shared": h.engine.CanEditShared(c.GetString("tenant_id")),
	})
}

// findEntry locates one entry in the tenant's merged view by id.
func (h *Handler) findEntry(ctx context.Context, tenantID string, ct models.CatalogType, id string) (models.CatalogEntry, bool, error) {
	merged, err := h.engine.Resolve(ctx, tenantID, ct, "")
	if err != nil {
		log.Printf("[findEntry] resolve failed for tenant %s: %v", tenantID, err)
		return models.CatalogEntry{}, false, err
	}
	for _, entry := range merged {
		if entry.ID == id {
			return entry, true, nil
		}
	}
	return models.CatalogEntry{}, false, nil
}

// respondMutationError maps the coordinator's error taxonomy to HTTP codes.
// Store outages are 503 on writes just like on reads.
func (h *Handler) respondMutationError(c *gin.Context, op string, err error) {
	log.Printf("Failed to %s: %v", op, err)
	switch {
	case errors.Is(err, catalog.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to modify shared catalog entries"})
	case catalog.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrSourceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op})
	}
}
