package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/islandhop/tripinit/internal/adapters/http"
	"github.com/islandhop/tripinit/internal/core/domain"
	"github.com/islandhop/tripinit/internal/core/usecases"
)

// ---- Mock repositories ----

type mockPlanRepo struct {
	getFn func(ctx context.Context, tripID, userID string) (*domain.TripPlan, error)
}

func (m *mockPlanRepo) GetByIDAndUser(ctx context.Context, tripID, userID string) (*domain.TripPlan, error) {
	if m.getFn != nil {
		return m.getFn(ctx, tripID, userID)
	}
	return nil, fmt.Errorf("%w: trip %s for user %s", domain.ErrTripNotFound, tripID, userID)
}

type mockVehicleRepo struct {
	getByIDFn func(ctx context.Context, id int64) (*domain.VehicleTariff, error)
	listFn    func(ctx context.Context) ([]domain.VehicleTariff, error)
	upsertFn  func(ctx context.Context, t *domain.VehicleTariff) error
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id int64) (*domain.VehicleTariff, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("%w: vehicle type %d", domain.ErrVehicleTariffNotFound, id)
}
func (m *mockVehicleRepo) List(ctx context.Context) ([]domain.VehicleTariff, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockVehicleRepo) Upsert(ctx context.Context, t *domain.VehicleTariff) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, t)
	}
	return nil
}

type mockGuideRepo struct {
	getByCityFn func(ctx context.Context, city string) (*domain.GuideTariff, error)
	listFn      func(ctx context.Context) ([]domain.GuideTariff, error)
	upsertFn    func(ctx context.Context, t *domain.GuideTariff) error
}

func (m *mockGuideRepo) GetByCity(ctx context.Context, city string) (*domain.GuideTariff, error) {
	if m.getByCityFn != nil {
		return m.getByCityFn(ctx, city)
	}
	return nil, fmt.Errorf("%w: city %s", domain.ErrGuideTariffNotFound, city)
}
func (m *mockGuideRepo) List(ctx context.Context) ([]domain.GuideTariff, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockGuideRepo) Upsert(ctx context.Context, t *domain.GuideTariff) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, t)
	}
	return nil
}

type mockInitiatedRepo struct {
	upsertFn func(ctx context.Context, t *domain.InitiatedTrip) error
	getFn    func(ctx context.Context, tripID, userID string) (*domain.InitiatedTrip, error)
}

func (m *mockInitiatedRepo) Upsert(ctx context.Context, t *domain.InitiatedTrip) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, t)
	}
	return nil
}
func (m *mockInitiatedRepo) GetByTripID(ctx context.Context, tripID, userID string) (*domain.InitiatedTrip, error) {
	if m.getFn != nil {
		return m.getFn(ctx, tripID, userID)
	}
	return nil, fmt.Errorf("%w: initiated trip %s for user %s", domain.ErrTripNotFound, tripID, userID)
}
func (m *mockInitiatedRepo) ListByVehicleType(ctx context.Context, vehicleTypeID int64) ([]domain.InitiatedTrip, error) {
	return nil, nil
}
func (m *mockInitiatedRepo) ListByCity(ctx context.Context, city string) ([]domain.InitiatedTrip, error) {
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(plans *mockPlanRepo, initiated *mockInitiatedRepo, vehicles *mockVehicleRepo, guides *mockGuideRepo) *handler.Dependencies {
	tariffs := usecases.NewTariffService(vehicles, guides, nil, nil)
	return &handler.Dependencies{
		Initiations: usecases.NewInitiationService(plans, initiated, tariffs, nil, nil),
		Tariffs:     tariffs,
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func samplePlan() *domain.TripPlan {
	return &domain.TripPlan{
		ID:        "trip-1",
		UserID:    "user-1",
		TripName:  "South coast loop",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-10",
		DailyPlans: []domain.DayPlan{
			{Day: 1, City: "Colombo", Attractions: []domain.Place{
				{Name: "Fort", Location: domain.GeoPoint{Lat: 6.9344, Lng: 79.8428}},
				{Name: "Gangaramaya", Location: domain.GeoPoint{Lat: 6.9167, Lng: 79.8562}},
			}},
		},
	}
}

func sampleVehicles() *mockVehicleRepo {
	return &mockVehicleRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.VehicleTariff, error) {
			if id != 7 {
				return nil, fmt.Errorf("%w: vehicle type %d", domain.ErrVehicleTariffNotFound, id)
			}
			return &domain.VehicleTariff{ID: 7, TypeName: "Sedan", PricePerKm: 100}, nil
		},
	}
}

func initiateBody(userID, tripID string, setDriver, setGuide int, vehicleID string) *strings.Reader {
	return strings.NewReader(fmt.Sprintf(
		`{"userId":%q,"tripId":%q,"setDriver":%d,"setGuide":%d,"preferredVehicleTypeId":%q}`,
		userID, tripID, setDriver, setGuide, vehicleID))
}

// ---- Initiate handler tests ----

func TestInitiateTrip_Success(t *testing.T) {
	deps := makeDeps(
		&mockPlanRepo{getFn: func(ctx context.Context, tripID, userID string) (*domain.TripPlan, error) {
			return samplePlan(), nil
		}},
		&mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/trips/initiate", initiateBody("user-1", "trip-1", 1, 0, "7"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result struct {
		TripID              string   `json:"tripId"`
		UserID              string   `json:"userId"`
		AverageTripDistance float64  `json:"averageTripDistance"`
		AverageDriverCost   *float64 `json:"averageDriverCost"`
		AverageGuideCost    *float64 `json:"averageGuideCost"`
		VehicleType         string   `json:"vehicleType"`
		RouteSummary        []struct {
			Day         int    `json:"day"`
			City        string `json:"city"`
			Attractions []struct {
				Name string `json:"name"`
			} `json:"attractions"`
		} `json:"routeSummary"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &result); err != nil {
		t.Fatal(err)
	}

	if result.TripID != "trip-1" || result.UserID != "user-1" {
		t.Errorf("identity fields wrong: %+v", result)
	}
	if result.AverageTripDistance <= 0 {
		t.Errorf("distance = %v, want > 0", result.AverageTripDistance)
	}
	if result.AverageDriverCost == nil {
		t.Error("driver cost missing from response")
	} else if math.Abs(*result.AverageDriverCost-result.AverageTripDistance*100) > 0.01 {
		t.Errorf("driver cost %v does not match distance %v at 100/km",
			*result.AverageDriverCost, result.AverageTripDistance)
	}
	if result.AverageGuideCost != nil {
		t.Errorf("guide cost should be omitted when setGuide=0, got %v", *result.AverageGuideCost)
	}
	if result.VehicleType != "Sedan" {
		t.Errorf("vehicleType = %q, want Sedan", result.VehicleType)
	}
	if len(result.RouteSummary) != 1 || result.RouteSummary[0].City != "Colombo" {
		t.Errorf("routeSummary wrong: %+v", result.RouteSummary)
	}
}

func TestInitiateTrip_BadRequests(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	tests := []struct {
		name string
		body string
	}{
		{"missing userId", `{"tripId":"t1","setDriver":1,"setGuide":0,"preferredVehicleTypeId":"7"}`},
		{"missing tripId", `{"userId":"u1","setDriver":1,"setGuide":0,"preferredVehicleTypeId":"7"}`},
		{"missing setDriver", `{"userId":"u1","tripId":"t1","setGuide":0,"preferredVehicleTypeId":"7"}`},
		{"setDriver out of range", `{"userId":"u1","tripId":"t1","setDriver":2,"setGuide":0,"preferredVehicleTypeId":"7"}`},
		{"missing vehicle id", `{"userId":"u1","tripId":"t1","setDriver":1,"setGuide":0}`},
		{"non-numeric vehicle id", `{"userId":"u1","tripId":"t1","setDriver":1,"setGuide":0,"preferredVehicleTypeId":"sedan"}`},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("POST", "/v1/trips/initiate", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("%s: expected 400, got %d", tt.name, resp.StatusCode)
		}
	}
}

func TestInitiateTrip_TripNotFound(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/trips/initiate", initiateBody("user-1", "ghost", 1, 0, "7"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "ghost") {
		t.Errorf("404 body %q does not name the missing trip", body)
	}
}

func TestInitiateTrip_VehicleNotFound(t *testing.T) {
	deps := makeDeps(
		&mockPlanRepo{getFn: func(ctx context.Context, tripID, userID string) (*domain.TripPlan, error) {
			return samplePlan(), nil
		}},
		&mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/trips/initiate", initiateBody("user-1", "trip-1", 1, 0, "99"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "99") {
		t.Errorf("404 body %q does not name the missing vehicle id", body)
	}
}

func TestInitiateTrip_MissingGuideCity(t *testing.T) {
	deps := makeDeps(
		&mockPlanRepo{getFn: func(ctx context.Context, tripID, userID string) (*domain.TripPlan, error) {
			return samplePlan(), nil
		}},
		&mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/trips/initiate", initiateBody("user-1", "trip-1", 0, 1, "7"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "Colombo") {
		t.Errorf("404 body %q does not name the unpriced city", body)
	}
}

// ---- Stored result tests ----

func TestGetTripInitiation_Success(t *testing.T) {
	cost := 1234.5
	deps := makeDeps(&mockPlanRepo{},
		&mockInitiatedRepo{getFn: func(ctx context.Context, tripID, userID string) (*domain.InitiatedTrip, error) {
			return &domain.InitiatedTrip{
				TripID: tripID, UserID: userID,
				AverageTripDistance: 42, AverageDriverCost: &cost,
				VehicleType: "Sedan",
			}, nil
		}},
		sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/trips/trip-1/initiation?userId=user-1", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.InitiatedTrip
	if err := json.Unmarshal(readBody(t, resp.Body), &result); err != nil {
		t.Fatal(err)
	}
	if result.TripID != "trip-1" || result.AverageTripDistance != 42 {
		t.Errorf("result wrong: %+v", result)
	}
}

func TestGetTripInitiation_RequiresUserID(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/trips/trip-1/initiation", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetTripInitiation_NotFound(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/trips/ghost/initiation?userId=user-1", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	if err := json.Unmarshal(readBody(t, resp.Body), &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "not_found" {
		t.Errorf("code = %q, want not_found", apiErr.Code)
	}
}

// ---- Tariff endpoint tests ----

func TestListVehicleTariffs_Paginated(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{},
		&mockVehicleRepo{listFn: func(ctx context.Context) ([]domain.VehicleTariff, error) {
			return []domain.VehicleTariff{
				{ID: 1, TypeName: "Sedan", PricePerKm: 100},
				{ID: 2, TypeName: "Van", PricePerKm: 150},
				{ID: 3, TypeName: "Mini Bus", PricePerKm: 200},
			}, nil
		}}, &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/tariffs/vehicles?offset=1&limit=1", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.VehicleTariff `json:"data"`
		Pagination handler.Pagination     `json:"pagination"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data) != 1 || result.Data[0].TypeName != "Van" {
		t.Errorf("page wrong: %+v", result.Data)
	}
	if result.Pagination.Total != 3 {
		t.Errorf("total = %d, want 3", result.Pagination.Total)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("expected Link headers on paginated response")
	}
}

func TestListGuideTariffs_CityFilter(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{}, sampleVehicles(),
		&mockGuideRepo{getByCityFn: func(ctx context.Context, city string) (*domain.GuideTariff, error) {
			if city != "Kandy" {
				return nil, fmt.Errorf("%w: city %s", domain.ErrGuideTariffNotFound, city)
			}
			return &domain.GuideTariff{ID: 3, City: "Kandy", PricePerDay: 60}, nil
		}})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/tariffs/guides?city=Kandy", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var tariff domain.GuideTariff
	if err := json.Unmarshal(readBody(t, resp.Body), &tariff); err != nil {
		t.Fatal(err)
	}
	if tariff.City != "Kandy" || tariff.PricePerDay != 60 {
		t.Errorf("tariff wrong: %+v", tariff)
	}

	req = httptest.NewRequest("GET", "/v1/tariffs/guides?city=Atlantis", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for unknown city, got %d", resp.StatusCode)
	}
}

func TestUpsertGuideTariff_Validation(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("PUT", "/v1/tariffs/guides",
		strings.NewReader(`{"city":"","price_per_day":50}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpsertVehicleTariff_Success(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{},
		&mockVehicleRepo{upsertFn: func(ctx context.Context, tariff *domain.VehicleTariff) error {
			tariff.ID = 42
			return nil
		}}, &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("PUT", "/v1/tariffs/vehicles",
		strings.NewReader(`{"type_name":"Tuk Tuk","price_per_km":35}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var tariff domain.VehicleTariff
	if err := json.Unmarshal(readBody(t, resp.Body), &tariff); err != nil {
		t.Fatal(err)
	}
	if tariff.ID != 42 {
		t.Errorf("id = %d, want 42 (assigned by store)", tariff.ID)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	deps := makeDeps(&mockPlanRepo{}, &mockInitiatedRepo{}, sampleVehicles(), &mockGuideRepo{})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
