package catalog

import "strings"

// Gate decides whether a tenant may edit entries of the shared catalog.
// The allow-list is injected at construction so deployments and tests can
// swap it without touching engine logic. The gate is the single source of
// truth: the UI asks it for edit affordances and the Mutation Coordinator
// re-checks it at write time.
type Gate struct {
	allowed map[string]struct{}
}

// NewGate builds a gate from an allow-list of tenant ids. Blank entries are
// dropped.
func NewGate(tenantIDs []string) *Gate {
	allowed := make(map[string]struct{}, len(tenantIDs))
	for _, id := range tenantIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			allowed[id] = struct{}{}
		}
	}
	return &Gate{allowed: allowed}
}

// ParseAllowList splits a comma-separated allow-list, e.g. the value of the
// SHARED_CATALOG_EDITORS environment variable.
func ParseAllowList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// CanEditShared reports whether tenantID may mutate shared catalog entries.
// Pure, synchronous membership test; no lookups, no caching.
func (g *Gate) CanEditShared(tenantID string) bool {
	_, ok := g.allowed[tenantID]
	return ok
}
