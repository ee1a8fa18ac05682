package location

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/voyagehq/go-trip-planner/internal/api/places"
	"github.com/voyagehq/go-trip-planner/internal/cache"
	"github.com/voyagehq/go-trip-planner/internal/geo"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, prompt, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*places.GeocodeResult, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.GeocodeResult), args.Error(1)
}

func aiResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func newTestService(ai AIClient, geocoder places.Geocoder) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	gateway := cache.NewGateway(cache.NewMemoryStore(), logger)
	return NewServiceImpl(ai, geocoder, gateway, geo.DefaultBounds, logger)
}

func TestResolve_AICoordinatesPreferred(t *testing.T) {
	mockAI := new(MockAIClient)
	mockGeo := new(MockGeocoder)
	service := newTestService(mockAI, mockGeo)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"city": "부산", "district": "해운대구", "neighborhood": "", "country": "South Korea", "lat": 35.1631, "lng": 129.1635}`), nil).Once()

	hierarchy, err := service.Resolve(context.Background(), "주말에 부산 해운대 쪽으로 놀러가고 싶어")
	require.NoError(t, err)

	assert.Equal(t, "부산", hierarchy.City)
	assert.Equal(t, "해운대구", hierarchy.District)
	assert.InDelta(t, 35.1631, hierarchy.Latitude, 0.0001)
	assert.InDelta(t, 129.1635, hierarchy.Longitude, 0.0001)
	assert.Equal(t, types.SpecificityMedium, hierarchy.Specificity)
	assert.InDelta(t, radiusDistrictKm, hierarchy.SearchRadiusKm, 0.001)

	mockGeo.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	mockAI.AssertExpectations(t)
}

func TestResolve_OutOfBoundsCoordinatesFallBackToGeocoder(t *testing.T) {
	mockAI := new(MockAIClient)
	mockGeo := new(MockGeocoder)
	service := newTestService(mockAI, mockGeo)

	// The model hallucinated coordinates on another continent.
	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"city": "경주", "district": "", "neighborhood": "", "country": "South Korea", "lat": 48.8566, "lng": 2.3522}`), nil).Once()
	mockGeo.On("Geocode", mock.Anything, "경주").
		Return(&places.GeocodeResult{Latitude: 35.8562, Longitude: 129.2247, FormattedAddress: "Gyeongju, South Korea"}, nil).Once()

	hierarchy, err := service.Resolve(context.Background(), "경주 여행")
	require.NoError(t, err)

	assert.Equal(t, "경주", hierarchy.City)
	assert.InDelta(t, 35.8562, hierarchy.Latitude, 0.0001)
	assert.InDelta(t, 129.2247, hierarchy.Longitude, 0.0001)
	assert.InDelta(t, radiusCityKm, hierarchy.SearchRadiusKm, 0.001)

	mockAI.AssertExpectations(t)
	mockGeo.AssertExpectations(t)
}

func TestResolve_AIFailureFallsBackToGeocoder(t *testing.T) {
	mockAI := new(MockAIClient)
	mockGeo := new(MockGeocoder)
	service := newTestService(mockAI, mockGeo)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()
	mockGeo.On("Geocode", mock.Anything, "서울 당일치기").
		Return(&places.GeocodeResult{Latitude: 37.5665, Longitude: 126.978, FormattedAddress: "Seoul, South Korea"}, nil).Once()

	hierarchy, err := service.Resolve(context.Background(), "서울 당일치기")
	require.NoError(t, err)

	assert.Equal(t, "Seoul, South Korea", hierarchy.City)
	assert.Equal(t, types.SpecificityLow, hierarchy.Specificity)
	assert.InDelta(t, 37.5665, hierarchy.Latitude, 0.0001)

	mockAI.AssertExpectations(t)
	mockGeo.AssertExpectations(t)
}

func TestResolve_MalformedAIJSONFallsBackToGeocoder(t *testing.T) {
	mockAI := new(MockAIClient)
	mockGeo := new(MockGeocoder)
	service := newTestService(mockAI, mockGeo)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"city": "부산", "lat": `), nil).Once()
	mockGeo.On("Geocode", mock.Anything, "부산 바다 보고 싶다").
		Return(&places.GeocodeResult{Latitude: 35.1796, Longitude: 129.0756, FormattedAddress: "Busan, South Korea"}, nil).Once()

	hierarchy, err := service.Resolve(context.Background(), "부산 바다 보고 싶다")
	require.NoError(t, err)
	assert.Equal(t, "Busan, South Korea", hierarchy.City)

	mockAI.AssertExpectations(t)
	mockGeo.AssertExpectations(t)
}

func TestResolve_NothingResolvableReturnsErrNoDestination(t *testing.T) {
	mockAI := new(MockAIClient)
	mockGeo := new(MockGeocoder)
	service := newTestService(mockAI, mockGeo)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"city": "", "district": "", "neighborhood": "", "country": "", "lat": null, "lng": null}`), nil).Once()
	mockGeo.On("Geocode", mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	_, err := service.Resolve(context.Background(), "어디든 상관없어")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoDestination)
}

func TestResolve_GeocoderFailureAfterAICityReturnsErrNoDestination(t *testing.T) {
	mockAI := new(MockAIClient)
	mockGeo := new(MockGeocoder)
	service := newTestService(mockAI, mockGeo)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"city": "부산", "district": "", "neighborhood": "", "country": "South Korea", "lat": null, "lng": null}`), nil).Once()
	mockGeo.On("Geocode", mock.Anything, "부산").
		Return(nil, assert.AnError).Once()

	_, err := service.Resolve(context.Background(), "부산 여행")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoDestination)
}

func TestResolve_SecondCallServedFromCache(t *testing.T) {
	mockAI := new(MockAIClient)
	mockGeo := new(MockGeocoder)
	service := newTestService(mockAI, mockGeo)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"city": "전주", "district": "", "neighborhood": "한옥마을", "country": "South Korea", "lat": 35.8175, "lng": 127.153}`), nil).Once()

	first, err := service.Resolve(context.Background(), "전주 한옥마을 먹방 여행")
	require.NoError(t, err)

	second, err := service.Resolve(context.Background(), "전주 한옥마을 먹방 여행")
	require.NoError(t, err)

	assert.Equal(t, first.City, second.City)
	assert.Equal(t, first.Latitude, second.Latitude)
	assert.Equal(t, types.SpecificityHigh, second.Specificity)
	assert.InDelta(t, radiusNeighborhoodKm, second.SearchRadiusKm, 0.001)
	mockAI.AssertNumberOfCalls(t, "GenerateResponse", 1)
}

func TestResolveCity(t *testing.T) {
	t.Run("geocodes and caches", func(t *testing.T) {
		mockAI := new(MockAIClient)
		mockGeo := new(MockGeocoder)
		service := newTestService(mockAI, mockGeo)

		mockGeo.On("Geocode", mock.Anything, "여수").
			Return(&places.GeocodeResult{Latitude: 34.7604, Longitude: 127.6622, FormattedAddress: "Yeosu, South Korea"}, nil).Once()

		first, err := service.ResolveCity(context.Background(), "여수")
		require.NoError(t, err)
		assert.Equal(t, "여수", first.City)
		assert.Equal(t, types.SpecificityMedium, first.Specificity)

		second, err := service.ResolveCity(context.Background(), "여수")
		require.NoError(t, err)
		assert.Equal(t, first.Latitude, second.Latitude)
		mockGeo.AssertNumberOfCalls(t, "Geocode", 1)
		mockAI.AssertNotCalled(t, "GenerateResponse", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects out of bounds result", func(t *testing.T) {
		mockAI := new(MockAIClient)
		mockGeo := new(MockGeocoder)
		service := newTestService(mockAI, mockGeo)

		mockGeo.On("Geocode", mock.Anything, "Paris").
			Return(&places.GeocodeResult{Latitude: 48.8566, Longitude: 2.3522, FormattedAddress: "Paris, France"}, nil).Once()

		_, err := service.ResolveCity(context.Background(), "Paris")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNoDestination)
	})

	t.Run("propagates geocoder failure", func(t *testing.T) {
		mockAI := new(MockAIClient)
		mockGeo := new(MockGeocoder)
		service := newTestService(mockAI, mockGeo)

		mockGeo.On("Geocode", mock.Anything, "없는도시").
			Return(nil, assert.AnError).Once()

		_, err := service.ResolveCity(context.Background(), "없는도시")
		require.Error(t, err)
	})
}
