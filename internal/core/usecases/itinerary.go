package usecases

import (
	"fmt"
	"sort"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// ExtractLegs flattens a trip plan into the ordered legs to route and the
// per-day summary returned to callers. Legs only connect consecutive points
// within the same day; a day with fewer than two points contributes no legs
// but still appears in the summary. Every coordinate is validated here so
// downstream distance math never sees an out-of-range point.
func ExtractLegs(plan *domain.TripPlan) ([]domain.Leg, []domain.RouteDay, error) {
	days := make([]domain.DayPlan, len(plan.DailyPlans))
	copy(days, plan.DailyPlans)
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	var legs []domain.Leg
	summary := make([]domain.RouteDay, 0, len(days))

	for _, day := range days {
		entry := domain.RouteDay{
			Day:         day.Day,
			City:        day.City,
			Attractions: make([]domain.AttractionSummary, 0, len(day.Attractions)),
		}

		for i, place := range day.Attractions {
			if err := place.Location.Validate(); err != nil {
				return nil, nil, &domain.CalculationError{
					Detail: fmt.Sprintf("day %d: attraction %q", day.Day, place.Name),
					Err:    err,
				}
			}
			entry.Attractions = append(entry.Attractions, domain.AttractionSummary{
				Name:     place.Name,
				Location: place.Location,
			})

			if i == 0 {
				continue
			}
			prev := day.Attractions[i-1]
			legs = append(legs, domain.Leg{
				Day:      day.Day,
				FromName: prev.Name,
				ToName:   place.Name,
				From:     prev.Location,
				To:       place.Location,
			})
		}

		summary = append(summary, entry)
	}

	return legs, summary, nil
}

// validateDayNumbers checks the stored plan against its date range: day
// numbers must be contiguous from 1 and match the inclusive duration.
func validateDayNumbers(plan *domain.TripPlan, durationDays int) error {
	if len(plan.DailyPlans) != durationDays {
		return &domain.CalculationError{
			Detail: fmt.Sprintf("plan has %d daily plans but the date range spans %d days",
				len(plan.DailyPlans), durationDays),
		}
	}

	seen := make(map[int]bool, len(plan.DailyPlans))
	for _, day := range plan.DailyPlans {
		seen[day.Day] = true
	}
	for n := 1; n <= durationDays; n++ {
		if !seen[n] {
			return &domain.CalculationError{
				Detail: fmt.Sprintf("day numbers are not contiguous: day %d is missing", n),
			}
		}
	}
	return nil
}
