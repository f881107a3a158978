package crisis

import (
	"sort"
	"strings"

	"mindcare-go/internal/models"
)

// ResourceCatalog is a read-only, priority-ordered set of emergency resources.
type ResourceCatalog struct {
	ordered []models.EmergencyResource
	byID    map[string]models.EmergencyResource
}

// NewResourceCatalog copies resources and orders them by priority, then id.
func NewResourceCatalog(resources []models.EmergencyResource) *ResourceCatalog {
	ordered := append([]models.EmergencyResource(nil), resources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	byID := make(map[string]models.EmergencyResource, len(ordered))
	for _, r := range ordered {
		byID[r.ID] = r
	}
	return &ResourceCatalog{ordered: ordered, byID: byID}
}

// Resources returns the catalog sorted ascending by priority. An empty filter
// returns every resource; otherwise only resources of that type.
func (c *ResourceCatalog) Resources(filter models.ResourceType) []models.EmergencyResource {
	out := make([]models.EmergencyResource, 0, len(c.ordered))
	for _, r := range c.ordered {
		if filter == "" || r.Type == filter {
			out = append(out, r)
		}
	}
	return out
}

// ForRegion returns resources without a region plus those of region, in priority order.
func (c *ResourceCatalog) ForRegion(region string, filter models.ResourceType) []models.EmergencyResource {
	var out []models.EmergencyResource
	for _, r := range c.Resources(filter) {
		if r.Region == "" || strings.EqualFold(r.Region, region) {
			out = append(out, r)
		}
	}
	return out
}

// Lookup returns the resource with id.
func (c *ResourceCatalog) Lookup(id string) (models.EmergencyResource, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Primary returns the highest-priority resource of type t, preferring region.
func (c *ResourceCatalog) Primary(t models.ResourceType, region string) (models.EmergencyResource, bool) {
	if regional := c.ForRegion(region, t); len(regional) > 0 {
		return regional[0], true
	}
	all := c.Resources(t)
	if len(all) == 0 {
		return models.EmergencyResource{}, false
	}
	return all[0], true
}

// URI builds the deep link for a resource: tel: for voice, sms: for text.
func URI(r models.EmergencyResource) string {
	number := strings.ReplaceAll(r.Number, " ", "")
	if r.Type == models.ResourceText {
		if r.Keyword != "" {
			return "sms:" + number + "?body=" + r.Keyword
		}
		return "sms:" + number
	}
	return "tel:" + number
}
