package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Car is a rentable vehicle as served by the upstream rental API. Read-only here.
type Car struct {
	ID               string   `json:"id"`
	Year             int      `json:"year"`
	Brand            string   `json:"brand"`
	Model            string   `json:"model"`
	Type             string   `json:"type"`
	Img              string   `json:"img"`
	Description      string   `json:"description"`
	FuelConsumption  string   `json:"fuelConsumption"`
	EngineSize       string   `json:"engineSize"`
	Accessories      []string `json:"accessories"`
	Functionalities  []string `json:"functionalities"`
	RentalPrice      string   `json:"rentalPrice"`
	RentalCompany    string   `json:"rentalCompany"`
	Address          string   `json:"address"`
	RentalConditions []string `json:"rentalConditions"`
	Mileage          int      `json:"mileage"`
}

// FilterState is the catalog query. Every field is independently optional and no
// cross-field check is made (MinMileage may exceed MaxMileage).
type FilterState struct {
	Brand       string `json:"brand,omitempty"`
	RentalPrice string `json:"rentalPrice,omitempty"`
	MinMileage  *int   `json:"minMileage,omitempty"`
	MaxMileage  *int   `json:"maxMileage,omitempty"`
}

// FilterPatch is a partial FilterState. A nil field leaves the current value alone;
// the Clear* flags reset a field to unset.
type FilterPatch struct {
	Brand       *string
	RentalPrice *string
	MinMileage  *int
	MaxMileage  *int

	ClearMinMileage bool
	ClearMaxMileage bool
}

func (f FilterState) Clone() FilterState {
	out := f
	if f.MinMileage != nil {
		v := *f.MinMileage
		out.MinMileage = &v
	}
	if f.MaxMileage != nil {
		v := *f.MaxMileage
		out.MaxMileage = &v
	}
	return out
}

func (f FilterState) Merge(p FilterPatch) FilterState {
	out := f.Clone()
	if p.Brand != nil {
		out.Brand = *p.Brand
	}
	if p.RentalPrice != nil {
		out.RentalPrice = *p.RentalPrice
	}
	if p.ClearMinMileage {
		out.MinMileage = nil
	} else if p.MinMileage != nil {
		v := *p.MinMileage
		out.MinMileage = &v
	}
	if p.ClearMaxMileage {
		out.MaxMileage = nil
	} else if p.MaxMileage != nil {
		v := *p.MaxMileage
		out.MaxMileage = &v
	}
	return out
}

// CarsPage is one page of the catalog. The server is the source of truth for
// Page and TotalPages.
type CarsPage struct {
	Cars       []Car `json:"cars"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// The upstream sometimes sends page counters as strings.
func (p *CarsPage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Cars       []Car   `json:"cars"`
		Page       flexInt `json:"page"`
		TotalPages flexInt `json:"totalPages"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Cars, p.Page, p.TotalPages = raw.Cars, int(raw.Page), int(raw.TotalPages)
	return nil
}

type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// Location is "city, country" taken from an address like "123 Main St, Kyiv, Ukraine".
func (c Car) Location() string {
	parts := strings.Split(c.Address, ", ")
	if len(parts) < 2 {
		return strings.TrimSpace(c.Address)
	}
	city := strings.Join(parts[1:len(parts)-1], ", ")
	country := parts[len(parts)-1]
	if city == "" {
		return country
	}
	return city + ", " + country
}

func (c Car) City() string {
	parts := strings.Split(c.Address, ", ")
	if len(parts) < 3 {
		return ""
	}
	return strings.Join(parts[1:len(parts)-1], ", ")
}

func (c Car) Country() string {
	parts := strings.Split(c.Address, ", ")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}

type Condition struct {
	Label string
	Value string
}

// Conditions splits "Minimum age: 25" style strings into label and value.
func (c Car) Conditions() []Condition {
	out := make([]Condition, 0, len(c.RentalConditions))
	for _, rc := range c.RentalConditions {
		label, value, _ := strings.Cut(rc, ":")
		out = append(out, Condition{Label: strings.TrimSpace(label), Value: strings.TrimSpace(value)})
	}
	return out
}

func (c Car) Extras() []string {
	out := make([]string, 0, len(c.Accessories)+len(c.Functionalities))
	out = append(out, c.Accessories...)
	return append(out, c.Functionalities...)
}

// FormatMileage renders 5858 as "5 858".
func FormatMileage(m int) string {
	s := strconv.Itoa(m)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
