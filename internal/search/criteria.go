// Package search holds the property search criteria, their URL form and the
// filter/sort pass applied to search results.
package search

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"staybnb/internal/utils"
)

type Sort string

const (
	SortRelevance     Sort = "relevance"
	SortPriceLowHigh  Sort = "price_low_to_high"
	SortPriceHighLow  Sort = "price_high_to_low"
	SortFavoriteFirst Sort = "favorite"
)

// Criteria is the full set of search inputs. Zero values mean "not set"; the
// instant-book filter is a pointer because false is a meaningful choice.
type Criteria struct {
	Location     string
	CheckIn      time.Time
	CheckOut     time.Time
	Guests       int
	MinPrice     float64
	MaxPrice     float64
	PropertyType string
	MinBedrooms  int
	MinBathrooms float64
	Amenities    []string
	InstantBook  *bool
	Sort         Sort
}

// HasDates reports whether both ends of the stay are set.
func (c Criteria) HasDates() bool {
	return !c.CheckIn.IsZero() && !c.CheckOut.IsZero()
}

// FromQuery rebuilds criteria from URL query parameters. Malformed values are
// ignored rather than rejected, the way a shared link with a stale field still opens.
func FromQuery(q url.Values) Criteria {
	c := Criteria{
		Location:     strings.TrimSpace(q.Get("location")),
		PropertyType: strings.TrimSpace(q.Get("propertyType")),
		Sort:         parseSort(q.Get("sort")),
	}
	if d, err := utils.ParseDate(q.Get("checkIn"), time.Local); err == nil {
		c.CheckIn = d
	}
	if d, err := utils.ParseDate(q.Get("checkOut"), time.Local); err == nil {
		c.CheckOut = d
	}
	c.Guests = atoi(q.Get("guests"))
	c.MinPrice = atof(q.Get("minPrice"))
	c.MaxPrice = atof(q.Get("maxPrice"))
	c.MinBedrooms = atoi(q.Get("bedrooms"))
	c.MinBathrooms = atof(q.Get("bathrooms"))
	for _, a := range q["amenities"] {
		for _, part := range strings.Split(a, ",") {
			if part = strings.TrimSpace(part); part != "" {
				c.Amenities = append(c.Amenities, part)
			}
		}
	}
	if v, err := strconv.ParseBool(q.Get("instantBook")); err == nil {
		c.InstantBook = &v
	}
	return c
}

// Query encodes the criteria as URL query parameters, omitting unset fields.
func (c Criteria) Query() url.Values {
	q := url.Values{}
	if c.Location != "" {
		q.Set("location", c.Location)
	}
	if !c.CheckIn.IsZero() {
		q.Set("checkIn", c.CheckIn.Format(utils.DateLayout))
	}
	if !c.CheckOut.IsZero() {
		q.Set("checkOut", c.CheckOut.Format(utils.DateLayout))
	}
	if c.Guests > 0 {
		q.Set("guests", strconv.Itoa(c.Guests))
	}
	if c.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(c.MinPrice, 'f', -1, 64))
	}
	if c.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(c.MaxPrice, 'f', -1, 64))
	}
	if c.PropertyType != "" {
		q.Set("propertyType", c.PropertyType)
	}
	if c.MinBedrooms > 0 {
		q.Set("bedrooms", strconv.Itoa(c.MinBedrooms))
	}
	if c.MinBathrooms > 0 {
		q.Set("bathrooms", strconv.FormatFloat(c.MinBathrooms, 'f', -1, 64))
	}
	if len(c.Amenities) > 0 {
		q.Set("amenities", strings.Join(c.Amenities, ","))
	}
	if c.InstantBook != nil {
		q.Set("instantBook", strconv.FormatBool(*c.InstantBook))
	}
	if c.Sort != "" && c.Sort != SortRelevance {
		q.Set("sort", string(c.Sort))
	}
	return q
}

func parseSort(s string) Sort {
	switch Sort(s) {
	case SortPriceLowHigh, SortPriceHighLow, SortFavoriteFirst:
		return Sort(s)
	}
	return SortRelevance
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
