package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/utils"
)

var (
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	dataURLPattern    = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,`)
)

type DishSuggestion struct {
	Description           string   `json:"description"`
	Tags                  []string `json:"tags"`
	Pairing               string   `json:"pairing"`
	IngredientSuggestions []string `json:"ingredient_suggestions"`
}

type StrategicInsight struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type StrategicAnalysis struct {
	Summary  string             `json:"summary"`
	Insights []StrategicInsight `json:"insights"`
	Priority string             `json:"priority"`
}

func fallbackAnalysis() StrategicAnalysis {
	return StrategicAnalysis{
		Summary:  "Strategic analysis is currently unavailable.",
		Insights: []StrategicInsight{},
		Priority: "low",
	}
}

type SuggestionRequest struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	ImageBase64 string   `json:"image_base64"`
}

type LogActionRequest struct {
	Action   string                 `json:"action"`
	DishID   string                 `json:"dish_id"`
	Metadata map[string]interface{} `json:"metadata"`
}

type AIService struct {
	generator       TextGenerator
	dishes          repositories.DishRepository
	logs            repositories.AILogRepository
	suggestionModel string
	chatModel       string
}

// NewAIService accepts a nil generator; every call then fails with UpstreamFailure.
func NewAIService(generator TextGenerator, dishes repositories.DishRepository, logs repositories.AILogRepository, suggestionModel, chatModel string) *AIService {
	return &AIService{
		generator:       generator,
		dishes:          dishes,
		logs:            logs,
		suggestionModel: suggestionModel,
		chatModel:       chatModel,
	}
}

func (s *AIService) generate(ctx context.Context, model, prompt string, image *InlineImage) (string, error) {
	if s.generator == nil {
		return "", utils.WrapUpstream(errors.New("no generator configured"), "AI service unavailable")
	}
	text, err := s.generator.Generate(ctx, model, prompt, image)
	if err != nil {
		return "", utils.WrapUpstream(err, "AI generation failed")
	}
	return text, nil
}

// extractJSON decodes the outermost {...} block found in free text into dest.
func extractJSON(text string, dest interface{}) error {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return errors.New("no JSON object in response")
	}
	return json.Unmarshal([]byte(match), dest)
}

func decodeImage(raw string) (*InlineImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	mimeType := "image/jpeg"
	if m := dataURLPattern.FindStringSubmatch(raw); m != nil {
		mimeType = m[1]
		raw = raw[len(m[0]):]
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, utils.NewInvalidInput("image must be base64 encoded")
	}
	return &InlineImage{MIMEType: mimeType, Data: data}, nil
}

func suggestionPrompt(name string, ingredients []string) string {
	var b strings.Builder
	b.WriteString("You write menu copy for the Global Bites restaurant.\n")
	fmt.Fprintf(&b, "Dish name: %q\n", name)
	if len(ingredients) > 0 {
		fmt.Fprintf(&b, "Ingredients: %s\n", strings.Join(ingredients, ", "))
	}
	b.WriteString("Reply with a single JSON object and nothing else, using these keys:\n")
	b.WriteString(`{"description": "plain text, at most 300 characters", "tags": ["short labels"], "pairing": "one drink or side", "ingredient_suggestions": ["one or two additions"]}`)
	return b.String()
}

// GenerateDishSuggestions drafts copy for a new dish and records a "generated" log entry.
func (s *AIService) GenerateDishSuggestions(ctx context.Context, req SuggestionRequest) (*DishSuggestion, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.NewInvalidInput("dish name is required")
	}
	image, err := decodeImage(req.ImageBase64)
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, s.suggestionModel, suggestionPrompt(name, cleanList(req.Ingredients)), image)
	if err != nil {
		return nil, err
	}

	var suggestion DishSuggestion
	if err := extractJSON(text, &suggestion); err != nil {
		utils.ErrorLogger.Warnf("Unparseable AI suggestion for %q: %v", name, err)
		return nil, utils.WrapUpstream(err, "AI response was not valid JSON")
	}
	if suggestion.Tags == nil {
		suggestion.Tags = []string{}
	}
	if suggestion.IngredientSuggestions == nil {
		suggestion.IngredientSuggestions = []string{}
	}

	entry := &models.AIActionLog{
		Action:   models.AIActionGenerated,
		Metadata: map[string]interface{}{"name": name, "model": s.suggestionModel, "with_image": image != nil},
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		utils.ErrorLogger.WithError(err).Error("Failed to record AI generation")
	}
	return &suggestion, nil
}

// LogAction appends an audit entry, typically "applied" or "discarded" from the editor.
func (s *AIService) LogAction(ctx context.Context, req LogActionRequest) (*models.AIActionLog, error) {
	action, ok := models.ParseAIAction(strings.TrimSpace(req.Action))
	if !ok {
		return nil, utils.NewInvalidInput("action must be one of generated, applied, discarded")
	}

	entry := &models.AIActionLog{Action: action, Metadata: req.Metadata}
	if raw := strings.TrimSpace(req.DishID); raw != "" {
		id, err := utils.ParseID(raw, "dish id")
		if err != nil {
			return nil, err
		}
		entry.DishID = &id
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func menuContext(dishes []models.Dish) string {
	var b strings.Builder
	for _, d := range dishes {
		fmt.Fprintf(&b, "- %s (%s) %s", d.Name, d.Category, utils.FormatCurrency(d.Price))
		if d.Description != "" {
			fmt.Fprintf(&b, ": %s", d.Description)
		}
		if len(d.Tags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(d.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Chat answers a customer question using the active menu as context.
func (s *AIService) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", utils.NewInvalidInput("message is required")
	}

	dishes, err := s.dishes.ListActive(ctx)
	if err != nil {
		return "", err
	}

	prompt := "You are the Global Bites chef assistant. Recommend only dishes from this menu and name them exactly.\n" +
		"Menu:\n" + menuContext(dishes) +
		"Customer: " + message

	text, err := s.generate(ctx, s.chatModel, prompt, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AnalyzeStrategicData never fails: any AI or parsing error yields the fallback analysis.
func (s *AIService) AnalyzeStrategicData(ctx context.Context, data interface{}) StrategicAnalysis {
	payload, err := json.Marshal(data)
	if err != nil {
		return fallbackAnalysis()
	}

	prompt := "You are a business analyst for a restaurant. Given this report data:\n" + string(payload) + "\n" +
		`Reply with one JSON object: {"summary": "two sentences", "insights": [{"type": "trend|alert|recommendation", "text": "..."}], "priority": "high|medium|low"}`

	text, err := s.generate(ctx, s.chatModel, prompt, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("Strategic analysis failed")
		return fallbackAnalysis()
	}

	var analysis StrategicAnalysis
	if err := extractJSON(text, &analysis); err != nil || analysis.Summary == "" {
		return fallbackAnalysis()
	}
	if analysis.Insights == nil {
		analysis.Insights = []StrategicInsight{}
	}
	switch analysis.Priority {
	case "high", "medium", "low":
	default:
		analysis.Priority = "low"
	}
	return analysis
}
