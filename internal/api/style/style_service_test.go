package style

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
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

func aiResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func newTestService(ai AIClient) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewServiceImpl(ai, cache.NewGateway(cache.NewMemoryStore(), logger), logger)
}

func TestAnalyze_UsesAIVerdict(t *testing.T) {
	mockAI := new(MockAIClient)
	service := newTestService(mockAI)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"travel_style": "night_tour", "confidence": 0.92, "reason": "rooftop bars and night views"}`), nil).Once()

	got := service.Analyze(context.Background(), "부산 야경 보러 루프톱 바 위주로")
	assert.Equal(t, types.StyleNightTour, got)
	mockAI.AssertExpectations(t)
}

func TestAnalyze_CachesAIVerdict(t *testing.T) {
	mockAI := new(MockAIClient)
	service := newTestService(mockAI)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"travel_style": "food_tour", "confidence": 0.88, "reason": "restaurant focused"}`), nil).Once()

	first := service.Analyze(context.Background(), "전주 맛집 투어")
	second := service.Analyze(context.Background(), "전주 맛집 투어")

	assert.Equal(t, types.StyleFoodTour, first)
	assert.Equal(t, first, second)
	mockAI.AssertNumberOfCalls(t, "GenerateResponse", 1)
}

func TestAnalyze_FallsBackOnAIError(t *testing.T) {
	mockAI := new(MockAIClient)
	service := newTestService(mockAI)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Twice()

	got := service.Analyze(context.Background(), "가족끼리 아이 데리고 서울 나들이")
	assert.Equal(t, types.StyleFamilyTour, got)

	// Fallback verdicts are not cached, so the model is retried.
	service.Analyze(context.Background(), "가족끼리 아이 데리고 서울 나들이")
	mockAI.AssertNumberOfCalls(t, "GenerateResponse", 2)
}

func TestAnalyze_FallsBackOnUnknownStyle(t *testing.T) {
	mockAI := new(MockAIClient)
	service := newTestService(mockAI)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse(`{"travel_style": "galactic_tour", "confidence": 0.5, "reason": "?"}`), nil).Once()

	got := service.Analyze(context.Background(), "서울 야시장 구경")
	assert.Equal(t, types.StyleNightTour, got)
}

func TestAnalyze_FallsBackOnMalformedJSON(t *testing.T) {
	mockAI := new(MockAIClient)
	service := newTestService(mockAI)

	mockAI.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(aiResponse("I think this is a food tour."), nil).Once()

	got := service.Analyze(context.Background(), "경주 역사 유적 둘러보기")
	assert.Equal(t, types.StyleCultureTour, got)
}

func TestFallbackStyle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.TravelStyle
	}{
		{"family keywords", "아이랑 갈만한 곳", types.StyleFamilyTour},
		{"food keywords", "부산 맛집 먹방", types.StyleFoodTour},
		{"outdoor keywords", "한강 산책하고 싶다", types.StyleOutdoorDate},
		{"indoor keywords", "비 오는 날 박물관", types.StyleIndoorDate},
		{"date keywords", "연인이랑 데이트", types.StyleOutdoorDate},
		{"culture keywords", "궁궐이랑 한옥 구경", types.StyleCultureTour},
		{"shopping keywords", "백화점 쇼핑", types.StyleShoppingTour},
		{"healing keywords", "온천에서 휴식", types.StyleHealingTour},
		{"adventure keywords", "놀이공원 액티비티", types.StyleAdventureTour},
		{"night keywords", "야경 명소", types.StyleNightTour},
		{"family outranks food", "가족끼리 맛집", types.StyleFamilyTour},
		{"food outranks outdoor", "공원 근처 맛집", types.StyleFoodTour},
		{"no match", "그냥 돌아다니기", types.StyleCustom},
		{"empty", "", types.StyleCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackStyle(tt.text))
		})
	}
}
