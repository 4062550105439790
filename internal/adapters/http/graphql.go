package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL read schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	attractionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Attraction",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
		},
	})

	routeDayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteDay",
		Fields: graphql.Fields{
			"day":         &graphql.Field{Type: graphql.Int},
			"city":        &graphql.Field{Type: graphql.String},
			"attractions": &graphql.Field{Type: graphql.NewList(attractionType)},
		},
	})

	initiatedTripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "InitiatedTrip",
		Fields: graphql.Fields{
			"trip_id":               &graphql.Field{Type: graphql.String},
			"user_id":               &graphql.Field{Type: graphql.String},
			"trip_name":             &graphql.Field{Type: graphql.String},
			"start_date":            &graphql.Field{Type: graphql.String},
			"end_date":              &graphql.Field{Type: graphql.String},
			"base_city":             &graphql.Field{Type: graphql.String},
			"driver_needed":         &graphql.Field{Type: graphql.Int},
			"guide_needed":          &graphql.Field{Type: graphql.Int},
			"average_trip_distance": &graphql.Field{Type: graphql.Float},
			"average_driver_cost":   &graphql.Field{Type: graphql.Float},
			"average_guide_cost":    &graphql.Field{Type: graphql.Float},
			"vehicle_type":          &graphql.Field{Type: graphql.String},
			"route_summary":         &graphql.Field{Type: graphql.NewList(routeDayType)},
		},
	})

	vehicleTariffType := graphql.NewObject(graphql.ObjectConfig{
		Name: "VehicleTariff",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.Int},
			"type_name":        &graphql.Field{Type: graphql.String},
			"price_per_km":     &graphql.Field{Type: graphql.Float},
			"flat_per_day_fee": &graphql.Field{Type: graphql.Float},
		},
	})

	guideTariffType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GuideTariff",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.Int},
			"city":          &graphql.Field{Type: graphql.String},
			"price_per_day": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"initiatedTrip": &graphql.Field{
				Type:        initiatedTripType,
				Description: "Stored cost computation for a trip",
				Args: graphql.FieldConfigArgument{
					"trip_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"user_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					tripID := p.Args["trip_id"].(string)
					userID := p.Args["user_id"].(string)
					return deps.Initiations.GetResult(p.Context, tripID, userID)
				},
			},
			"vehicleTariffs": &graphql.Field{
				Type:        graphql.NewList(vehicleTariffType),
				Description: "All vehicle tariffs",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tariffs.ListVehicles(p.Context)
				},
			},
			"guideTariffs": &graphql.Field{
				Type:        graphql.NewList(guideTariffType),
				Description: "All per-city guide rates",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tariffs.ListGuides(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
