package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/islandhop/tripinit/internal/core/domain"
)

// initiateRequest is the POST /v1/trips/initiate body. setDriver, setGuide,
// and preferredVehicleTypeId are pointers so that a missing field is
// distinguishable from a zero value.
type initiateRequest struct {
	UserID                 string  `json:"userId"`
	TripID                 string  `json:"tripId"`
	SetDriver              *int    `json:"setDriver"`
	SetGuide               *int    `json:"setGuide"`
	PreferredVehicleTypeID *string `json:"preferredVehicleTypeId"`
}

// initiateResponse is the 201 body. Cost fields are omitted entirely when the
// corresponding service was not requested.
type initiateResponse struct {
	TripID              string            `json:"tripId"`
	UserID              string            `json:"userId"`
	AverageTripDistance float64           `json:"averageTripDistance"`
	AverageDriverCost   *float64          `json:"averageDriverCost,omitempty"`
	AverageGuideCost    *float64          `json:"averageGuideCost,omitempty"`
	VehicleType         string            `json:"vehicleType"`
	RouteSummary        []domain.RouteDay `json:"routeSummary"`
}

// InitiateTripHandler runs the cost computation for a stored trip plan.
// Error bodies on this endpoint are plain text naming the offending entity so
// that the planning frontend can surface them verbatim.
func InitiateTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req initiateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).SendString("invalid request body")
		}

		if req.UserID == "" {
			return c.Status(400).SendString("userId is required")
		}
		if req.TripID == "" {
			return c.Status(400).SendString("tripId is required")
		}
		if req.SetDriver == nil || (*req.SetDriver != 0 && *req.SetDriver != 1) {
			return c.Status(400).SendString("setDriver must be 0 or 1")
		}
		if req.SetGuide == nil || (*req.SetGuide != 0 && *req.SetGuide != 1) {
			return c.Status(400).SendString("setGuide must be 0 or 1")
		}
		if req.PreferredVehicleTypeID == nil {
			return c.Status(400).SendString("preferredVehicleTypeId is required")
		}
		vehicleTypeID, err := strconv.ParseInt(*req.PreferredVehicleTypeID, 10, 64)
		if err != nil {
			return c.Status(400).SendString("preferredVehicleTypeId must be numeric")
		}

		result, err := deps.Initiations.Initiate(c.UserContext(), domain.InitiationRequest{
			TripID:        req.TripID,
			UserID:        req.UserID,
			IncludeDriver: *req.SetDriver == 1,
			IncludeGuide:  *req.SetGuide == 1,
			VehicleTypeID: vehicleTypeID,
		})
		if err != nil {
			return initiationError(c, err)
		}

		return c.Status(201).JSON(initiateResponse{
			TripID:              result.TripID,
			UserID:              result.UserID,
			AverageTripDistance: result.AverageTripDistance,
			AverageDriverCost:   result.AverageDriverCost,
			AverageGuideCost:    result.AverageGuideCost,
			VehicleType:         result.VehicleType,
			RouteSummary:        result.RouteSummary,
		})
	}
}

// initiationError maps the error taxonomy to status codes. The sentinel
// wrapping puts the missing entity's key in the message already.
func initiationError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case domain.IsNotFound(err):
		return c.Status(404).SendString(err.Error())
	case errors.As(err, &ve):
		return c.Status(400).SendString(ve.Error())
	default:
		return c.Status(500).SendString(err.Error())
	}
}

// GetTripInitiationHandler returns the stored result of a prior computation.
func GetTripInitiationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tripID := c.Params("id")
		userID := c.Query("userId")
		if tripID == "" {
			return errBadRequest(c, "trip id is required")
		}
		if userID == "" {
			return errBadRequest(c, "userId query parameter is required")
		}

		trip, err := deps.Initiations.GetResult(c.UserContext(), tripID, userID)
		if err != nil {
			if domain.IsNotFound(err) {
				return errNotFound(c, err.Error())
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(trip)
	}
}

// ListVehicleTariffsHandler returns all vehicle tariffs, paginated.
func ListVehicleTariffsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tariffs, err := deps.Tariffs.ListVehicles(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(tariffs)
		if offset >= total {
			tariffs = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			tariffs = tariffs[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: tariffs, Pagination: pg})
	}
}

// UpsertVehicleTariffHandler creates or replaces a vehicle tariff.
func UpsertVehicleTariffHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tariff domain.VehicleTariff
		if err := c.BodyParser(&tariff); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Tariffs.UpsertVehicle(c.UserContext(), &tariff); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				return errBadRequest(c, ve.Error())
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(tariff)
	}
}

// ListGuideTariffsHandler returns per-city guide rates, paginated. A city
// query parameter narrows the list to that one city.
func ListGuideTariffsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if city := c.Query("city"); city != "" {
			tariff, err := deps.Tariffs.ResolveGuide(c.UserContext(), city)
			if err != nil {
				if domain.IsNotFound(err) {
					return errNotFound(c, err.Error())
				}
				return errInternal(c, err.Error())
			}
			return c.JSON(tariff)
		}

		tariffs, err := deps.Tariffs.ListGuides(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(tariffs)
		if offset >= total {
			tariffs = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			tariffs = tariffs[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: tariffs, Pagination: pg})
	}
}

// UpsertGuideTariffHandler creates or replaces a city's guide rate.
func UpsertGuideTariffHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tariff domain.GuideTariff
		if err := c.BodyParser(&tariff); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Tariffs.UpsertGuide(c.UserContext(), &tariff); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				return errBadRequest(c, ve.Error())
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(tariff)
	}
}

// ServiceStats holds row counts from the core tables.
type ServiceStats struct {
	TripPlans      int    `json:"trip_plans"`
	InitiatedTrips int    `json:"initiated_trips"`
	VehicleTypes   int    `json:"vehicle_types"`
	GuideCities    int    `json:"guide_cities"`
	LastInitiation string `json:"last_initiation,omitempty"`
}

// ServiceStatsHandler returns row counts from the core tables.
func ServiceStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats ServiceStats
		row := deps.DB.Pool.QueryRow(c.UserContext(), `
			SELECT
				(SELECT count(*) FROM trip_plans),
				(SELECT count(*) FROM initiated_trips),
				(SELECT count(*) FROM vehicle_types),
				(SELECT count(*) FROM guide_fees),
				COALESCE((SELECT max(last_updated)::text FROM initiated_trips), '')
		`)
		if err := row.Scan(&stats.TripPlans, &stats.InitiatedTrips,
			&stats.VehicleTypes, &stats.GuideCities, &stats.LastInitiation); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}
