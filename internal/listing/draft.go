// Package listing implements the multi-step property form: one typed draft struct
// per step, per-step validation and the single create/update call on submit.
package listing

import (
	"strings"

	"staybnb/internal/db"
)

type BasicInfo struct {
	Title        string `json:"title" validate:"required,min=5,max=120"`
	Description  string `json:"description" validate:"required,min=20,max=5000"`
	PropertyType string `json:"propertyType" validate:"required,oneof=apartment house villa cabin condo room loft other"`
}

type Location struct {
	Address   string   `json:"address" validate:"required"`
	City      string   `json:"city" validate:"required"`
	State     string   `json:"state"`
	Country   string   `json:"country" validate:"required"`
	ZipCode   string   `json:"zipCode" validate:"max=12"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

type Capacity struct {
	MaxGuests int     `json:"maxGuests" validate:"gte=1,lte=50"`
	Bedrooms  int     `json:"bedrooms" validate:"gte=0,lte=50"`
	Beds      int     `json:"beds" validate:"gte=1,lte=100"`
	Bathrooms float64 `json:"bathrooms" validate:"gte=0,lte=50"`
}

type Pricing struct {
	PricePerNight   float64  `json:"pricePerNight" validate:"gt=0"`
	CleaningFee     *float64 `json:"cleaningFee" validate:"omitempty,gte=0"`
	SecurityDeposit *float64 `json:"securityDeposit" validate:"omitempty,gte=0"`
	WeeklyDiscount  *float64 `json:"weeklyDiscount" validate:"omitempty,gte=0,lte=100"`
	MonthlyDiscount *float64 `json:"monthlyDiscount" validate:"omitempty,gte=0,lte=100"`
}

type Details struct {
	Amenities   []string `json:"amenities" validate:"dive,max=60"`
	HouseRules  string   `json:"houseRules" validate:"max=2000"`
	InstantBook bool     `json:"instantBook"`
}

type Images struct {
	URLs []string `json:"images" validate:"min=1,max=20,dive,url"`
}

// Draft is the whole form. It lives only in memory until Submit.
type Draft struct {
	PropertyID int       `json:"propertyId,omitempty"`
	Basic      BasicInfo `json:"basic"`
	Location   Location  `json:"location"`
	Capacity   Capacity  `json:"capacity"`
	Pricing    Pricing   `json:"pricing"`
	Details    Details   `json:"details"`
	Images     Images    `json:"images"`
}

// Input is the payload of a create or update call.
type Input struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	PropertyType    string   `json:"propertyType"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Country         string   `json:"country"`
	ZipCode         string   `json:"zipCode"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	MaxGuests       int      `json:"maxGuests"`
	Bedrooms        int      `json:"bedrooms"`
	Beds            int      `json:"beds"`
	Bathrooms       float64  `json:"bathrooms"`
	PricePerNight   float64  `json:"pricePerNight"`
	CleaningFee     float64  `json:"cleaningFee"`
	SecurityDeposit float64  `json:"securityDeposit"`
	WeeklyDiscount  float64  `json:"weeklyDiscount"`
	MonthlyDiscount float64  `json:"monthlyDiscount"`
	Amenities       []string `json:"amenities"`
	HouseRules      string   `json:"houseRules"`
	Images          []string `json:"images"`
	InstantBook     bool     `json:"instantBook"`
	Status          string   `json:"status,omitempty"`
}

// Normalize flattens the draft into an Input. Unset optional numbers become 0,
// text is trimmed and blank amenities are dropped.
func (d Draft) Normalize() Input {
	d = d.trimmed()
	return Input{
		Title:           d.Basic.Title,
		Description:     d.Basic.Description,
		PropertyType:    d.Basic.PropertyType,
		Address:         d.Location.Address,
		City:            d.Location.City,
		State:           d.Location.State,
		Country:         d.Location.Country,
		ZipCode:         d.Location.ZipCode,
		Latitude:        orZero(d.Location.Latitude),
		Longitude:       orZero(d.Location.Longitude),
		MaxGuests:       d.Capacity.MaxGuests,
		Bedrooms:        d.Capacity.Bedrooms,
		Beds:            d.Capacity.Beds,
		Bathrooms:       d.Capacity.Bathrooms,
		PricePerNight:   d.Pricing.PricePerNight,
		CleaningFee:     orZero(d.Pricing.CleaningFee),
		SecurityDeposit: orZero(d.Pricing.SecurityDeposit),
		WeeklyDiscount:  orZero(d.Pricing.WeeklyDiscount),
		MonthlyDiscount: orZero(d.Pricing.MonthlyDiscount),
		Amenities:       d.Details.Amenities,
		HouseRules:      d.Details.HouseRules,
		Images:          d.Images.URLs,
		InstantBook:     d.Details.InstantBook,
	}
}

// trimmed returns a copy with surrounding whitespace removed from the text fields
// and blank amenities dropped. Validation and submission both see this copy.
func (d Draft) trimmed() Draft {
	d.Basic.Title = strings.TrimSpace(d.Basic.Title)
	d.Basic.Description = strings.TrimSpace(d.Basic.Description)
	d.Location.Address = strings.TrimSpace(d.Location.Address)
	d.Location.City = strings.TrimSpace(d.Location.City)
	d.Location.State = strings.TrimSpace(d.Location.State)
	d.Location.Country = strings.TrimSpace(d.Location.Country)
	d.Location.ZipCode = strings.TrimSpace(d.Location.ZipCode)
	d.Details.HouseRules = strings.TrimSpace(d.Details.HouseRules)
	d.Details.Amenities = trimAll(d.Details.Amenities)
	return d
}

// Trimmed applies the same trimming to a flat payload.
func (in Input) Trimmed() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Country = strings.TrimSpace(in.Country)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.HouseRules = strings.TrimSpace(in.HouseRules)
	in.Amenities = trimAll(in.Amenities)
	return in
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DraftFromInput splits an Input back into per-step structs, so a server-side
// payload goes through the same step rules as the form.
func DraftFromInput(in Input) Draft {
	return Draft{
		Basic: BasicInfo{
			Title:        in.Title,
			Description:  in.Description,
			PropertyType: in.PropertyType,
		},
		Location: Location{
			Address:   in.Address,
			City:      in.City,
			State:     in.State,
			Country:   in.Country,
			ZipCode:   in.ZipCode,
			Latitude:  &in.Latitude,
			Longitude: &in.Longitude,
		},
		Capacity: Capacity{
			MaxGuests: in.MaxGuests,
			Bedrooms:  in.Bedrooms,
			Beds:      in.Beds,
			Bathrooms: in.Bathrooms,
		},
		Pricing: Pricing{
			PricePerNight:   in.PricePerNight,
			CleaningFee:     &in.CleaningFee,
			SecurityDeposit: &in.SecurityDeposit,
			WeeklyDiscount:  &in.WeeklyDiscount,
			MonthlyDiscount: &in.MonthlyDiscount,
		},
		Details: Details{
			Amenities:   in.Amenities,
			HouseRules:  in.HouseRules,
			InstantBook: in.InstantBook,
		},
		Images: Images{URLs: in.Images},
	}
}

// DraftFromProperty loads an existing property for editing.
func DraftFromProperty(p db.Property) Draft {
	d := DraftFromInput(Input{
		Title:           p.Title,
		Description:     p.Description,
		PropertyType:    p.PropertyType,
		Address:         p.Address,
		City:            p.City,
		State:           p.State,
		Country:         p.Country,
		ZipCode:         p.ZipCode,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		MaxGuests:       p.MaxGuests,
		Bedrooms:        p.Bedrooms,
		Beds:            p.Beds,
		Bathrooms:       p.Bathrooms,
		PricePerNight:   p.PricePerNight,
		CleaningFee:     p.CleaningFee,
		SecurityDeposit: p.SecurityDeposit,
		WeeklyDiscount:  p.WeeklyDiscount,
		MonthlyDiscount: p.MonthlyDiscount,
		Amenities:       p.Amenities,
		HouseRules:      p.HouseRules,
		Images:          p.Images,
		InstantBook:     p.InstantBook,
	})
	d.PropertyID = p.ID
	return d
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
