package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMileage(t *testing.T) {
	cases := map[int]string{
		0:       "0",
		999:     "999",
		5858:    "5 858",
		123456:  "123 456",
		1234567: "1 234 567",
		-4200:   "-4 200",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMileage(in), "mileage %d", in)
	}
}

func TestCarLocation(t *testing.T) {
	c := Car{Address: "123 Example Street, Kiev, Ukraine"}
	assert.Equal(t, "Kiev, Ukraine", c.Location())
	assert.Equal(t, "Kiev", c.City())
	assert.Equal(t, "Ukraine", c.Country())

	assert.Equal(t, "Ukraine", Car{Address: "Street, Ukraine"}.Location())
	assert.Equal(t, "", Car{}.Location())
}

func TestCarConditions(t *testing.T) {
	c := Car{RentalConditions: []string{"Minimum age: 25", "Valid driver's license"}}
	got := c.Conditions()
	require.Len(t, got, 2)
	assert.Equal(t, Condition{Label: "Minimum age", Value: "25"}, got[0])
	assert.Equal(t, Condition{Label: "Valid driver's license"}, got[1])
}

func TestFilterMerge(t *testing.T) {
	min, max := 100, 50
	brand := "BMW"
	f := FilterState{RentalPrice: "30"}.Merge(FilterPatch{Brand: &brand, MinMileage: &min, MaxMileage: &max})

	assert.Equal(t, "BMW", f.Brand)
	assert.Equal(t, "30", f.RentalPrice)
	require.NotNil(t, f.MinMileage)
	assert.Equal(t, 100, *f.MinMileage)
	// min > max passes through untouched
	assert.Equal(t, 50, *f.MaxMileage)

	f = f.Merge(FilterPatch{ClearMinMileage: true})
	assert.Nil(t, f.MinMileage)
	assert.NotNil(t, f.MaxMileage)
}

func TestCarsPageAcceptsStringCounters(t *testing.T) {
	var p CarsPage
	require.NoError(t, json.Unmarshal([]byte(`{"cars":[{"id":"a"}],"page":"2","totalPages":5}`), &p))
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 5, p.TotalPages)
	require.Len(t, p.Cars, 1)
}
