package domain

import (
	"time"
)

// DateLayout is the calendar-date format used by trip plans (ISO local date).
const DateLayout = "2006-01-02"

// Place is a point of interest visited on a day of the itinerary.
type Place struct {
	Name                 string   `json:"name"`
	Type                 string   `json:"type,omitempty"`
	Location             GeoPoint `json:"location"`
	VisitDurationMinutes int      `json:"visit_duration_minutes,omitempty"`
	Rating               float64  `json:"rating,omitempty"`
	UserSelected         bool     `json:"user_selected,omitempty"`
}

// DayPlan is one calendar day of an itinerary: a city and the ordered
// attractions visited there. Day numbers are 1-based and contiguous.
type DayPlan struct {
	Day         int     `json:"day"`
	City        string  `json:"city"`
	Attractions []Place `json:"attractions"`
}

// TripPlan is a stored multi-day itinerary. It is owned by the trip-planning
// collaborator; this service only reads it.
type TripPlan struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	TripName            string    `json:"trip_name,omitempty"`
	StartDate           string    `json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate             string    `json:"end_date"`   // YYYY-MM-DD, inclusive
	ArrivalTime         string    `json:"arrival_time,omitempty"`
	BaseCity            string    `json:"base_city,omitempty"`
	MultiCityAllowed    bool      `json:"multi_city_allowed"`
	ActivityPacing      string    `json:"activity_pacing,omitempty"`
	BudgetLevel         string    `json:"budget_level,omitempty"`
	PreferredTerrains   []string  `json:"preferred_terrains,omitempty"`
	PreferredActivities []string  `json:"preferred_activities,omitempty"`
	DailyPlans          []DayPlan `json:"daily_plans"`
	CreatedAt           time.Time `json:"created_at"`
	LastUpdated         time.Time `json:"last_updated"`
}

// DurationDays returns the inclusive day count between start and end date.
func (p *TripPlan) DurationDays() (int, error) {
	start, err := time.Parse(DateLayout, p.StartDate)
	if err != nil {
		return 0, &CalculationError{Detail: "invalid start date: " + p.StartDate, Err: err}
	}
	end, err := time.Parse(DateLayout, p.EndDate)
	if err != nil {
		return 0, &CalculationError{Detail: "invalid end date: " + p.EndDate, Err: err}
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 0, &CalculationError{Detail: "end date " + p.EndDate + " precedes start date " + p.StartDate}
	}
	return days, nil
}

// VehicleTariff is the per-kilometre rate for a vehicle type, with an
// optional flat per-day driver fee. Owned by the tariff collaborator.
type VehicleTariff struct {
	ID            int64     `json:"id"`
	TypeName      string    `json:"type_name"`
	PricePerKm    float64   `json:"price_per_km"`
	FlatPerDayFee *float64  `json:"flat_per_day_fee,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// GuideTariff is the flat per-day guide rate for a city.
type GuideTariff struct {
	ID          int64     `json:"id"`
	City        string    `json:"city"`
	PricePerDay float64   `json:"price_per_day"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttractionSummary is the compact (name, coordinate) pair in a route summary.
type AttractionSummary struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}

// RouteDay is one day of the condensed route summary returned to callers.
type RouteDay struct {
	Day         int                 `json:"day"`
	City        string              `json:"city"`
	Attractions []AttractionSummary `json:"attractions"`
}

// InitiatedTrip is the derived record written after a successful cost
// computation. It carries the trip plan snapshot plus the computed figures.
// Re-computation for the same trip id overwrites the prior record.
type InitiatedTrip struct {
	TripID              string     `json:"trip_id"`
	UserID              string     `json:"user_id"`
	TripName            string     `json:"trip_name,omitempty"`
	StartDate           string     `json:"start_date"`
	EndDate             string     `json:"end_date"`
	ArrivalTime         string     `json:"arrival_time,omitempty"`
	BaseCity            string     `json:"base_city,omitempty"`
	MultiCityAllowed    bool       `json:"multi_city_allowed"`
	ActivityPacing      string     `json:"activity_pacing,omitempty"`
	BudgetLevel         string     `json:"budget_level,omitempty"`
	PreferredTerrains   []string   `json:"preferred_terrains,omitempty"`
	PreferredActivities []string   `json:"preferred_activities,omitempty"`
	DailyPlans          []DayPlan  `json:"daily_plans"`
	DriverNeeded        int        `json:"driver_needed"` // 0 or 1
	GuideNeeded         int        `json:"guide_needed"`  // 0 or 1
	AverageTripDistance float64    `json:"average_trip_distance"` // km
	AverageDriverCost   *float64   `json:"average_driver_cost,omitempty"` // nil = not requested
	AverageGuideCost    *float64   `json:"average_guide_cost,omitempty"`  // nil = not requested
	VehicleTypeID       int64      `json:"vehicle_type_id"`
	VehicleType         string     `json:"vehicle_type"`
	RouteSummary        []RouteDay `json:"route_summary"`
	CreatedAt           time.Time  `json:"created_at"`
	LastUpdated         time.Time  `json:"last_updated"`
}

// InitiationRequest are the caller-supplied options for a cost computation.
type InitiationRequest struct {
	TripID        string
	UserID        string
	IncludeDriver bool
	IncludeGuide  bool
	VehicleTypeID int64
}
