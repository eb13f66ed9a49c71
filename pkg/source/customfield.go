package source

import (
	"regexp"
	"strings"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

var customFieldNameDisallowed = regexp.MustCompile(`-+`)

// sanitizeCustomFieldName enforces NetBox's custom-field name
// constraints: slugify, collapse repeated separators, trim, bound to 50
// chars, and use underscores (NetBox requires identifier-shaped names).
func sanitizeCustomFieldName(raw string) string {
	slug := objects.NormalizeSlug(strings.ReplaceAll(raw, "_", "-"))
	slug = customFieldNameDisallowed.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return strings.ReplaceAll(slug, "-", "_")
}

// AddUpdateCustomField is the idempotent custom-field registration
// helper: looked up by (sanitized) name; if found, only object_types is
// updated (the union of whatever set of content types each source has
// registered so far, via KindStringList's object_types merge rule in
// pkg/objects/update.go); otherwise created. The object_types supplied are
// restricted to objects.PermittedCustomFieldObjectTypes.
func (b *Base) AddUpdateCustomField(data map[string]any) *objects.Entity {
	if name, ok := data["name"].(string); ok {
		data["name"] = sanitizeCustomFieldName(name)
	}
	if types, ok := data["object_types"]; ok {
		data["object_types"] = restrictObjectTypes(types)
	}

	name, _ := data["name"].(string)
	existing, found := b.Inv.GetByData(objects.ClassCustomField, map[string]any{"name": name})
	if !found {
		cf, _ := b.Inv.AddUpdateObject(objects.ClassCustomField, data, false, b)
		return cf
	}
	existing.Update(map[string]any{"object_types": data["object_types"]}, false, b, b.Inv)
	return existing
}

func restrictObjectTypes(raw any) []string {
	allowed := make(map[string]bool)
	for _, t := range objects.PermittedCustomFieldObjectTypes() {
		allowed[t] = true
	}
	var out []string
	switch v := raw.(type) {
	case []string:
		for _, t := range v {
			if allowed[t] {
				out = append(out, t)
			}
		}
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok && allowed[s] {
				out = append(out, s)
			}
		}
	}
	return out
}
