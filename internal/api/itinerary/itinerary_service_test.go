package itinerary

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voyagehq/go-trip-planner/app/observability/metrics"
	"github.com/voyagehq/go-trip-planner/internal/cache"
	"github.com/voyagehq/go-trip-planner/internal/geo"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

type MockLocationResolver struct {
	mock.Mock
}

func (m *MockLocationResolver) Resolve(ctx context.Context, text string) (*types.LocationHierarchy, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LocationHierarchy), args.Error(1)
}

func (m *MockLocationResolver) ResolveCity(ctx context.Context, city string) (*types.LocationHierarchy, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LocationHierarchy), args.Error(1)
}

type MockStyleAnalyzer struct {
	mock.Mock
}

func (m *MockStyleAnalyzer) Analyze(ctx context.Context, text string) types.TravelStyle {
	args := m.Called(ctx, text)
	return args.Get(0).(types.TravelStyle)
}

type MockFrameGenerator struct {
	mock.Mock
}

func (m *MockFrameGenerator) Generate(ctx context.Context, req types.FrameRequest) []types.FrameItem {
	args := m.Called(ctx, req)
	return args.Get(0).([]types.FrameItem)
}

// passValidator and noopEnricher stand in for the meal validator and
// rating enricher where their behavior is not under test.
type passValidator struct{}

func (passValidator) Validate(_ context.Context, schedule []types.ScheduleItem) []types.ScheduleItem {
	return schedule
}

type noopEnricher struct{}

func (noopEnricher) EnrichSchedule(context.Context, []types.ScheduleItem) {}

type serviceMocks struct {
	location *MockLocationResolver
	style    *MockStyleAnalyzer
	frame    *MockFrameGenerator
	provider *MockSearchProvider
	region   *MockRegionPlanner
}

func newTestService(t *testing.T) (*ServiceImpl, serviceMocks) {
	t.Helper()
	mocks := serviceMocks{
		location: new(MockLocationResolver),
		style:    new(MockStyleAnalyzer),
		frame:    new(MockFrameGenerator),
		provider: new(MockSearchProvider),
		region:   new(MockRegionPlanner),
	}
	logger := testLogger()
	gateway := cache.NewGateway(cache.NewMemoryStore(), logger)
	filler := NewFiller(mocks.provider, gateway, mocks.region, geo.DefaultBounds, DefaultTuning(), &metrics.AppMetrics{}, logger)
	service := NewServiceImpl(
		mocks.location, mocks.style, mocks.frame, filler, mocks.region,
		passValidator{}, noopEnricher{}, mocks.provider,
		geo.DefaultBounds, DefaultTuning(), &metrics.AppMetrics{}, logger,
	)
	return service, mocks
}

func plentyOfSupply() []types.PlaceCandidate {
	pool := make([]types.PlaceCandidate, 0, 5)
	for i := 0; i < 5; i++ {
		pool = append(pool, candidateAt("공급장소"+string(rune('A'+i)), 0.4*float64(i+1)))
	}
	return pool
}

func TestPlanTrip_HappyPath(t *testing.T) {
	service, mocks := newTestService(t)

	mocks.location.On("ResolveCity", mock.Anything, "서울").Return(seoulAnchor(), nil).Once()
	mocks.provider.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(plentyOfSupply(), nil)
	mocks.frame.On("Generate", mock.Anything, mock.MatchedBy(func(req types.FrameRequest) bool {
		return req.City == "서울" && req.DaysCount == 1 && req.TravelStyle == "food_tour"
	})).Return([]types.FrameItem{
		slot(1, "09:00", "11:00", "tourist_attraction", "관광지", 5.0),
		slot(1, "11:30", "13:00", "restaurant", "맛집", 2.0),
	}).Once()

	response, err := service.PlanTrip(context.Background(), types.PlanTripRequest{
		RequestText: "서울 맛집 위주로 하루 여행",
		City:        "서울",
		DaysCount:   1,
		TravelStyle: "food_tour",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, response.ItineraryID)
	assert.Equal(t, "서울", response.City)
	assert.Equal(t, "food_tour", response.TravelStyle)
	assert.Len(t, response.Schedule, 2)
	assert.Equal(t, 2, response.Metadata.TotalPlaces)
	assert.Equal(t, 2, response.Metadata.RequiredPlaces)
	assert.Len(t, response.Route, 1, "two same-day places produce one route leg")
	mocks.location.AssertExpectations(t)
	mocks.frame.AssertExpectations(t)
	// Style was supplied and valid, so the analyzer must not run.
	mocks.style.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestPlanTrip_AnalyzesStyleWhenMissing(t *testing.T) {
	service, mocks := newTestService(t)

	mocks.location.On("Resolve", mock.Anything, mock.Anything).Return(seoulAnchor(), nil).Once()
	mocks.style.On("Analyze", mock.Anything, "조용한 힐링 여행").Return(types.StyleHealingTour).Once()
	mocks.provider.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(plentyOfSupply(), nil)
	mocks.frame.On("Generate", mock.Anything, mock.Anything).Return([]types.FrameItem{
		slot(1, "09:00", "11:00", "tourist_attraction", "관광지", 5.0),
	}).Once()

	response, err := service.PlanTrip(context.Background(), types.PlanTripRequest{
		RequestText: "조용한 힐링 여행",
		DaysCount:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, string(types.StyleHealingTour), response.TravelStyle)
	mocks.style.AssertExpectations(t)
}

func TestPlanTrip_ZeroSupplyIsExplicitError(t *testing.T) {
	service, mocks := newTestService(t)

	mocks.location.On("ResolveCity", mock.Anything, "울릉도").Return(&types.LocationHierarchy{
		City: "울릉도", Latitude: 37.48, Longitude: 130.9,
	}, nil).Once()
	mocks.provider.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.PlaceCandidate{}, nil)

	_, err := service.PlanTrip(context.Background(), types.PlanTripRequest{
		RequestText: "울릉도 여행",
		City:        "울릉도",
		DaysCount:   2,
		TravelStyle: "healing_tour",
	})

	var supplyErr *types.InsufficientSupplyError
	require.ErrorAs(t, err, &supplyErr)
	assert.Equal(t, "울릉도", supplyErr.Region)
	assert.Zero(t, supplyErr.Found)
	assert.Equal(t, 12, supplyErr.Required)
	mocks.frame.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

// The supply probe applies the full pre-assembly chain: plentiful
// supply in the wrong district is still zero supply.
func TestPlanTrip_ProbeFiltersByAnchorDistrict(t *testing.T) {
	service, mocks := newTestService(t)

	anchor := seoulAnchor()
	anchor.District = "중구"
	mocks.location.On("ResolveCity", mock.Anything, "서울").Return(anchor, nil).Once()

	gangnam := make([]types.PlaceCandidate, 0, 5)
	for i := 0; i < 5; i++ {
		gangnam = append(gangnam, types.PlaceCandidate{
			Name:      fmt.Sprintf("강남장소%d", i),
			Address:   "서울 강남구 테헤란로",
			Latitude:  types.Ptr(anchorLat + 0.01),
			Longitude: types.Ptr(anchorLng),
			Rating:    types.Ptr(4.0),
		})
	}
	mocks.provider.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(gangnam, nil)

	_, err := service.PlanTrip(context.Background(), types.PlanTripRequest{
		RequestText: "서울 중구 여행",
		City:        "서울",
		DaysCount:   1,
		TravelStyle: "culture_tour",
	})

	var supplyErr *types.InsufficientSupplyError
	require.ErrorAs(t, err, &supplyErr)
	assert.Zero(t, supplyErr.Found)
	mocks.frame.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestPlanTrip_ThinSupplyPreSeedsRegionExpansion(t *testing.T) {
	service, mocks := newTestService(t)

	anchor := seoulAnchor()
	incheon := &types.LocationHierarchy{City: "인천", Latitude: 37.4563, Longitude: 126.7052}

	mocks.location.On("ResolveCity", mock.Anything, "서울").Return(anchor, nil).Once()
	// Probe finds something, but far below days*target.
	mocks.provider.On("Search", mock.Anything, mock.Anything, anchorLat, anchorLng, mock.Anything).
		Return([]types.PlaceCandidate{candidateAt("하나뿐인곳", 0.5)}, nil)
	mocks.region.On("Expand", mock.Anything, "서울", 3, mock.Anything).Return(incheon).Once()
	mocks.provider.On("Search", mock.Anything, mock.Anything, incheon.Latitude, incheon.Longitude, mock.Anything).
		Return([]types.PlaceCandidate{}, nil)
	mocks.frame.On("Generate", mock.Anything, mock.MatchedBy(func(req types.FrameRequest) bool {
		return req.City == "인천"
	})).Return([]types.FrameItem{}).Once()

	response, err := service.PlanTrip(context.Background(), types.PlanTripRequest{
		RequestText: "서울 여행",
		City:        "서울",
		DaysCount:   3,
		TravelStyle: "culture_tour",
	})
	require.NoError(t, err)
	assert.Equal(t, "인천", response.City)
	assert.Contains(t, response.Metadata.ExpandedRegions, "인천")
	mocks.region.AssertExpectations(t)
	mocks.frame.AssertExpectations(t)
}

func TestPlanTrip_UnresolvableDestination(t *testing.T) {
	service, mocks := newTestService(t)

	mocks.location.On("Resolve", mock.Anything, mock.Anything).
		Return(nil, types.ErrNoDestination).Once()

	_, err := service.PlanTrip(context.Background(), types.PlanTripRequest{
		RequestText: "어딘가 좋은 곳",
		DaysCount:   1,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNoDestination))
}

func TestBuildRoute_SkipsDayBoundaries(t *testing.T) {
	schedule := []types.ScheduleItem{
		{Day: 1, PlaceName: "A", Latitude: 37.50, Longitude: 127.00},
		{Day: 1, PlaceName: "B", Latitude: 37.51, Longitude: 127.00},
		{Day: 2, PlaceName: "C", Latitude: 37.52, Longitude: 127.00},
		{Day: 2, PlaceName: "D", Latitude: 37.53, Longitude: 127.00},
	}

	legs := BuildRoute(schedule)
	require.Len(t, legs, 2)
	assert.Equal(t, "A", legs[0].FromPlace)
	assert.Equal(t, "B", legs[0].ToPlace)
	assert.Equal(t, "C", legs[1].FromPlace)
	assert.InDelta(t, 1.11, legs[0].DistanceKm, 0.05)
}
