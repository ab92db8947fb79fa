package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// InlineImage is an image sent alongside a prompt.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string, image *InlineImage) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string, image *InlineImage) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	if image != nil {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: image.MIMEType, Data: image.Data}})
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, []*genai.Content{{Role: "user", Parts: parts}}, nil)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
		break
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.New("model returned an empty response")
	}
	return sb.String(), nil
}

// ThrottledGenerator caps calls to the wrapped generator and bounds each call by timeout.
type ThrottledGenerator struct {
	next    TextGenerator
	limiter *rate.Limiter
	timeout time.Duration
}

func NewThrottledGenerator(next TextGenerator, requestsPerMinute int, timeout time.Duration) *ThrottledGenerator {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}
	return &ThrottledGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
		timeout: timeout,
	}
}

var ErrAIRateLimited = errors.New("ai request rate exceeded")

func (t *ThrottledGenerator) Generate(ctx context.Context, model, prompt string, image *InlineImage) (string, error) {
	if !t.limiter.Allow() {
		return "", ErrAIRateLimited
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.next.Generate(ctx, model, prompt, image)
}
