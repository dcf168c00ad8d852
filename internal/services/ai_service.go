package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/vladimiradmaev/glucose-simulator/internal/config"
	apperrors "github.com/vladimiradmaev/glucose-simulator/internal/errors"
)

const geminiModel = "gemini-1.5-flash"

// MealAnalysis is the structured result of a meal photo analysis. The
// carb estimate feeds a meal treatment; the rest is shown to the
// patient so they can sanity-check it.
type MealAnalysis struct {
	FoodItems    []string `json:"food_items"`
	Weight       float64  `json:"weight"`
	Carbs        float64  `json:"carbs"`
	Confidence   string   `json:"confidence"`
	AnalysisText string   `json:"analysis_text"`
}

// AIService estimates meal carbohydrates from photos using the vision
// provider selected in the configuration.
type AIService struct {
	provider     string
	geminiClient *genai.Client
	openaiClient *openai.Client
}

func NewAIService(cfg config.AIConfig) (*AIService, error) {
	s := &AIService{provider: cfg.Provider}

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, apperrors.NewValidationError("OPENAI_API_KEY is required for the openai provider")
		}
		s.openaiClient = openai.NewClient(cfg.OpenAIAPIKey)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, apperrors.NewValidationError("GEMINI_API_KEY is required for the gemini provider")
		}
		client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown AI provider %q", cfg.Provider))
	}

	return s, nil
}

// AnalyzeMealPhoto estimates the carbohydrate content of the meal in
// the image. The model estimates the portion weight itself.
func (s *AIService) AnalyzeMealPhoto(ctx context.Context, imageURL string) (*MealAnalysis, error) {
	if s.provider == "openai" {
		return s.analyzeWithOpenAI(ctx, imageURL)
	}
	return s.analyzeWithGemini(ctx, imageURL)
}

const mealPrompt = `You are a certified diabetes educator specializing in nutrition analysis.
You will analyze the food in the image to estimate its carbohydrate content accurately for diabetes management.

TASK:
1. Identify the food items in the image
2. Estimate the total weight of the portion in grams
3. Estimate total carbohydrates (in grams) based on standard nutritional databases
4. Assess your confidence in this estimation (low, medium, high)
5. Provide the information in a specific JSON format

REQUIREMENTS:
- Be medically precise in your carbohydrate estimation
- Include both visible ingredients and likely hidden ingredients that contain carbs
- Consider portion sizes carefully
- If the image contains nutritional information or packaging, prioritize that data
- IMPORTANT: Provide all text responses in Russian language for Russian users
- Food names should be in Russian
- Keep the analysis text concise and focused on how the estimate was made

CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a valid JSON object
- Do not include any markdown formatting or explanatory text around the JSON
- The JSON must have these exact fields:
  {
    "food_items": ["item1", "item2"],
    "weight": 250,
    "carbs": 123.45,
    "confidence": "low|medium|high",
    "analysis_text": "Your analysis in Russian"
  }`

func (s *AIService) analyzeWithGemini(ctx context.Context, imageURL string) (*MealAnalysis, error) {
	imageData, err := downloadImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	model := s.geminiClient.GenerativeModel(geminiModel)
	img := genai.ImageData("image/jpeg", imageData)
	resp, err := model.GenerateContent(ctx, img, genai.Text(mealPrompt))
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "gemini")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("empty response"), "gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("unexpected response part type"), "gemini")
	}
	return parseMealAnalysis(string(text))
}

func (s *AIService) analyzeWithOpenAI(ctx context.Context, imageURL string) (*MealAnalysis, error) {
	resp, err := s.openaiClient.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4VisionPreview,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: mealPrompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL: imageURL,
							},
						},
					},
				},
			},
		},
	)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "openai")
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("empty response"), "openai")
	}
	return parseMealAnalysis(resp.Choices[0].Message.Content)
}

func downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// parseMealAnalysis extracts the JSON object from the model output,
// which often arrives wrapped in code fences or prose.
func parseMealAnalysis(response string) (*MealAnalysis, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("no valid JSON found in response")
	}
	var result MealAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Carbs < 0 {
		return nil, fmt.Errorf("model returned negative carbs")
	}
	return &result, nil
}

func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
