// Package property maps listing names from the booking platforms to the
// properties this host manages. The table is static and small; resolution
// happens once per inbound event.
package property

import "strings"

// Property describes a managed vacation rental.
type Property struct {
	Slug      string
	Area      string
	Name      string
	Supported bool
}

var banyanTree = Property{
	Slug:      "banyan-tree-300",
	Area:      "kailua-kona",
	Name:      "Banyan Tree 300",
	Supported: true,
}

// Listing names differ per platform: Airbnb sends the full marketing name,
// VRBO sends a shorter variant matched by substring.
var listings = map[string]Property{
	"Gorgeous Unit, Stunning Views!": banyanTree,
	"banyan tree":                    banyanTree,
}

var unknown = Property{
	Slug:      "unknown",
	Area:      "unknown",
	Name:      "Unknown",
	Supported: false,
}

// Resolve finds the property for a listing name. Exact match first, then
// case-insensitive substring match in both directions.
func Resolve(listingName string) Property {
	if p, ok := listings[listingName]; ok {
		return p
	}

	lower := strings.ToLower(strings.TrimSpace(listingName))
	if lower == "" {
		return unknown
	}
	for key, p := range listings {
		k := strings.ToLower(key)
		if strings.Contains(lower, k) || strings.Contains(k, lower) {
			return p
		}
	}

	return unknown
}

// AreaForSlug returns the geographic area for a property slug, or the
// unknown area when the slug is not in the table.
func AreaForSlug(slug string) string {
	for _, p := range listings {
		if p.Slug == slug {
			return p.Area
		}
	}
	return unknown.Area
}
