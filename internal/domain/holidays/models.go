package holidays

import "time"

// LocationAll is the wildcard location: a holiday marked "ALL" applies to
// every location inside its country.
const LocationAll = "ALL"

const DefaultCountry = "USA"

type Holiday struct {
	ID        string    `json:"id"`
	Country   string    `json:"country"`
	Location  string    `json:"location"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// Listing is the calendar view for one country/location selection, together
// with the distinct values that drive the filter controls.
type Listing struct {
	Holidays  []Holiday `json:"holidays"`
	Countries []string  `json:"countries"`
	Locations []string  `json:"locations"`
	Country   string    `json:"selectedCountry"`
	Location  string    `json:"selectedLocation"`
}
