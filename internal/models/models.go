package models

// LocationSummary is one row of the per-location vaccination summary.
type LocationSummary struct {
	Location            string  `json:"location"`
	Records             int     `json:"records"`
	FirstDate           string  `json:"first_date"`
	LastDate            string  `json:"last_date"`
	PeakVaccinations    float64 `json:"peak_total_vaccinations"`
	PeakFullyVaccinated float64 `json:"peak_people_fully_vaccinated"`
}

type LabelCount struct {
	Label int    `json:"label"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Option is a selectable control value.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Tick labels one slider marker.
type Tick struct {
	Marker int    `json:"marker"`
	Date   string `json:"date"`
}

type Options struct {
	Locations []Option `json:"locations"`
	Ticks     []Tick   `json:"ticks"`
	Labels    []Option `json:"labels"`
	Columns   []Option `json:"columns"`
}

// Page wraps a paginated listing.
type Page struct {
	Data   any `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
