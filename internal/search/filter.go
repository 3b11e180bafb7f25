package search

import (
	"sort"
	"strings"

	"staybnb/internal/db"
)

// Apply filters properties by the criteria's local predicates and orders the result.
// Location, dates and guest count are resolved by the server query and not
// re-checked here. The input slice is never modified.
func Apply(properties []db.Property, c Criteria) []db.Property {
	out := make([]db.Property, 0, len(properties))
	for _, p := range properties {
		if Matches(p, c) {
			out = append(out, p)
		}
	}
	SortProperties(out, c.Sort)
	return out
}

// Matches reports whether p satisfies every filter set in c.
func Matches(p db.Property, c Criteria) bool {
	if c.MinPrice > 0 && p.PricePerNight < c.MinPrice {
		return false
	}
	if c.MaxPrice > 0 && p.PricePerNight > c.MaxPrice {
		return false
	}
	if c.PropertyType != "" && p.PropertyType != c.PropertyType {
		return false
	}
	if c.MinBedrooms > 0 && p.Bedrooms < c.MinBedrooms {
		return false
	}
	if c.MinBathrooms > 0 && p.Bathrooms < c.MinBathrooms {
		return false
	}
	if c.InstantBook != nil && p.InstantBook != *c.InstantBook {
		return false
	}
	return hasAmenities(p.Amenities, c.Amenities)
}

// hasAmenities requires each wanted amenity to appear, case-insensitively, as a
// substring of at least one of the property's amenities.
func hasAmenities(have, want []string) bool {
	for _, w := range want {
		w = strings.ToLower(w)
		found := false
		for _, h := range have {
			if strings.Contains(strings.ToLower(h), w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SortProperties orders properties in place by key. Relevance keeps the server order.
func SortProperties(properties []db.Property, key Sort) {
	switch key {
	case SortPriceLowHigh:
		sort.SliceStable(properties, func(i, j int) bool {
			return properties[i].PricePerNight < properties[j].PricePerNight
		})
	case SortPriceHighLow:
		sort.SliceStable(properties, func(i, j int) bool {
			return properties[i].PricePerNight > properties[j].PricePerNight
		})
	case SortFavoriteFirst:
		sort.SliceStable(properties, func(i, j int) bool {
			return properties[i].IsFavorite && !properties[j].IsFavorite
		})
	}
}
