package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the point lies within valid WGS 84 bounds.
func (p GeoPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return &CoordinateOutOfRangeError{Lat: p.Lat, Lng: p.Lng}
	}
	return nil
}

// Leg is the segment between two consecutive visited points within a day.
// Days are independent routing segments: no leg spans a day boundary.
type Leg struct {
	Day      int      `json:"day"`
	FromName string   `json:"from_name"`
	ToName   string   `json:"to_name"`
	From     GeoPoint `json:"from"`
	To       GeoPoint `json:"to"`
}
