package region

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/voyagehq/go-trip-planner/internal/cache"
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

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveCity(ctx context.Context, city string) (*types.LocationHierarchy, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LocationHierarchy), args.Error(1)
}

func aiResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func newTestService(ai AIClient, resolver Resolver) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewServiceImpl(ai, resolver, cache.NewGateway(cache.NewMemoryStore(), logger), logger)
}

func hierarchyFor(city string, lat, lng float64) *types.LocationHierarchy {
	return &types.LocationHierarchy{
		City:           city,
		Latitude:       lat,
		Longitude:      lng,
		SearchRadiusKm: 5.0,
		Specificity:    types.SpecificityMedium,
	}
}

const suncheonSuggestion = `{"nearby_cities": ["여수", "광양", "보성"], "reason": "all within an hour of Suncheon"}`

func TestNearbyRegions(t *testing.T) {
	t.Run("returns suggested regions in order", func(t *testing.T) {
		mockAI := new(MockAIClient)
		service := newTestService(mockAI, new(MockResolver))

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(aiResponse(suncheonSuggestion), nil).Once()

		got := service.NearbyRegions(context.Background(), "순천", 2)
		assert.Equal(t, []string{"여수", "광양", "보성"}, got)
		mockAI.AssertExpectations(t)
	})

	t.Run("caches by city and day count", func(t *testing.T) {
		mockAI := new(MockAIClient)
		service := newTestService(mockAI, new(MockResolver))

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(aiResponse(suncheonSuggestion), nil).Twice()

		service.NearbyRegions(context.Background(), "순천", 2)
		service.NearbyRegions(context.Background(), "순천", 2)
		// A different duration is a different cache entry.
		service.NearbyRegions(context.Background(), "순천", 3)

		mockAI.AssertNumberOfCalls(t, "GenerateResponse", 2)
	})

	t.Run("caps at three and drops the origin", func(t *testing.T) {
		mockAI := new(MockAIClient)
		service := newTestService(mockAI, new(MockResolver))

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(aiResponse(`{"nearby_cities": ["순천", "여수", " 광양 ", "보성", "목포"], "reason": ""}`), nil).Once()

		got := service.NearbyRegions(context.Background(), "순천", 2)
		assert.Equal(t, []string{"여수", "광양", "보성"}, got)
	})

	t.Run("empty on model failure", func(t *testing.T) {
		mockAI := new(MockAIClient)
		service := newTestService(mockAI, new(MockResolver))

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, assert.AnError).Once()

		assert.Empty(t, service.NearbyRegions(context.Background(), "순천", 2))
	})

	t.Run("empty on malformed JSON", func(t *testing.T) {
		mockAI := new(MockAIClient)
		service := newTestService(mockAI, new(MockResolver))

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(aiResponse("Yeosu and Gwangyang are nice."), nil).Once()

		assert.Empty(t, service.NearbyRegions(context.Background(), "순천", 2))
	})
}

func TestExpand(t *testing.T) {
	t.Run("adopts first resolvable region", func(t *testing.T) {
		mockAI := new(MockAIClient)
		mockResolver := new(MockResolver)
		service := newTestService(mockAI, mockResolver)

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(aiResponse(suncheonSuggestion), nil).Once()
		mockResolver.On("ResolveCity", mock.Anything, "여수").
			Return(hierarchyFor("여수", 34.7604, 127.6622), nil).Once()

		got := service.Expand(context.Background(), "순천", 2, nil)
		require.NotNil(t, got)
		assert.Equal(t, "여수", got.City)
		mockResolver.AssertExpectations(t)
	})

	t.Run("skips unresolvable and adopts the next", func(t *testing.T) {
		mockAI := new(MockAIClient)
		mockResolver := new(MockResolver)
		service := newTestService(mockAI, mockResolver)

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(aiResponse(suncheonSuggestion), nil).Once()
		mockResolver.On("ResolveCity", mock.Anything, "여수").
			Return(nil, assert.AnError).Once()
		mockResolver.On("ResolveCity", mock.Anything, "광양").
			Return(hierarchyFor("광양", 34.9404, 127.696), nil).Once()

		got := service.Expand(context.Background(), "순천", 2, nil)
		require.NotNil(t, got)
		assert.Equal(t, "광양", got.City)
	})

	t.Run("skips already expanded regions", func(t *testing.T) {
		mockAI := new(MockAIClient)
		mockResolver := new(MockResolver)
		service := newTestService(mockAI, mockResolver)

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(aiResponse(suncheonSuggestion), nil).Once()
		mockResolver.On("ResolveCity", mock.Anything, "광양").
			Return(hierarchyFor("광양", 34.9404, 127.696), nil).Once()

		got := service.Expand(context.Background(), "순천", 2, []string{"여수"})
		require.NotNil(t, got)
		assert.Equal(t, "광양", got.City)
		mockResolver.AssertNotCalled(t, "ResolveCity", mock.Anything, "여수")
	})

	t.Run("nil when nothing suggested", func(t *testing.T) {
		mockAI := new(MockAIClient)
		mockResolver := new(MockResolver)
		service := newTestService(mockAI, mockResolver)

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, assert.AnError).Once()

		assert.Nil(t, service.Expand(context.Background(), "순천", 2, nil))
		mockResolver.AssertNotCalled(t, "ResolveCity", mock.Anything, mock.Anything)
	})

	t.Run("nil when nothing resolves", func(t *testing.T) {
		mockAI := new(MockAIClient)
		mockResolver := new(MockResolver)
		service := newTestService(mockAI, mockResolver)

		mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
			Return(aiResponse(suncheonSuggestion), nil).Once()
		mockResolver.On("ResolveCity", mock.Anything, mock.Anything).
			Return(nil, assert.AnError).Times(3)

		assert.Nil(t, service.Expand(context.Background(), "순천", 2, nil))
	})
}
