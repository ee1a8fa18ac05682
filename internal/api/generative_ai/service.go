package generativeAI

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

var model = flag.String("model", "gemini-2.0-flash", "the model name, e.g. gemini-2.0-flash")

// AIClient is the one-shot text generation client the planner's AI
// paths share. Every consumer treats its output as untrusted: empty,
// truncated or malformed responses are handled by the caller's
// deterministic fallback, never retried here.
type AIClient struct {
	client *genai.Client
	model  string
}

// NewAIClient builds the shared Gemini client. modelName comes from
// configuration; when empty the -model flag (and its default) applies.
func NewAIClient(ctx context.Context, modelName string) (*AIClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	if modelName == "" {
		modelName = *model
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client: client,
		model:  modelName,
	}, nil
}

// GenerateResponse sends a single prompt and returns the raw response,
// so callers can inspect candidates and finish reasons.
func (ai *AIClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	ctx, span := otel.Tracer("AIClient").Start(ctx, "GenerateResponse", trace.WithAttributes(
		attribute.String("model", ai.model),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	response, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	span.SetStatus(codes.Ok, "generated")
	return response, nil
}

// GenerateContent is the text-only convenience over GenerateResponse.
func (ai *AIClient) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	response, err := ai.GenerateResponse(ctx, prompt, config)
	if err != nil {
		return "", err
	}
	return ResponseText(response), nil
}

// ResponseText pulls the first candidate's text out of a response.
// Returns "" when the response carries no usable content.
func ResponseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	candidate := response.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}
	return candidate.Content.Parts[0].Text
}

// IsTruncated reports whether the model stopped because it ran out of
// output tokens. Truncated structured output is unusable.
func IsTruncated(response *genai.GenerateContentResponse) bool {
	if response == nil || len(response.Candidates) == 0 {
		return false
	}
	return response.Candidates[0].FinishReason == genai.FinishReasonMaxTokens
}

// CleanJSONResponse strips markdown fences and surrounding prose from a
// model response, leaving the JSON object portion.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	// Remove markdown code block markers
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}

	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}

	response = strings.TrimSpace(response)

	// Look for the first { and last } to extract the JSON object
	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}

	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}

	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}
