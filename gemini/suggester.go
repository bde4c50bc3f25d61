// Package gemini answers allocation requests with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/riskfolio"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is the model used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

const instruction = `You are a financial advisor specialized in Indian mutual funds.
You split an investable amount between small cap, mid cap and large cap funds according to the risk profile of the investor.
You answer with a single JSON object and nothing else.`

// Config holds what is needed to reach Gemini.
type Config struct {
	APIKey string // falls back on GEMINI_API_KEY or GOOGLE_API_KEY when empty
	Model  string
	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
}

// generator is the part of genai.Models used by the Suggester.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Suggester is a riskfolio.AllocationSuggester backed by a Gemini model.
// It is safe for concurrent use.
type Suggester struct {
	ModelName string
	Config    *genai.GenerateContentConfig

	models generator
	log    zerolog.Logger
}

var _ riskfolio.AllocationSuggester = (*Suggester)(nil)

// New creates the Gemini client and returns a Suggester using it.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Suggester, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize Gemini's client: %w", err)
	}
	return newSuggester(client.Models, cfg.Model, log), nil
}

func newSuggester(models generator, model string, log zerolog.Logger) *Suggester {
	if model == "" {
		model = DefaultModel
	}
	return &Suggester{
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
			ResponseMIMEType:  "application/json",
		},
		models: models,
		log:    log.With().Str("component", "gemini").Str("model", model).Logger(),
	}
}

// ErrNoAnswer is returned when the model answers without any text.
var ErrNoAnswer = errors.New("no answer from model")

// Suggest sends prompt to the model and returns the text of its answer.
func (s *Suggester) Suggest(ctx context.Context, prompt string) (string, error) {
	s.log.Debug().Int("prompt_len", len(prompt)).Msg("generating allocation")

	resp, err := s.models.GenerateContent(ctx, s.ModelName, genai.Text(prompt), s.Config)
	if err != nil {
		return "", fmt.Errorf("cannot generate content with %s: %w", s.ModelName, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%s: %w", s.ModelName, ErrNoAnswer)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s: %w", s.ModelName, ErrNoAnswer)
	}
	s.log.Debug().Int("answer_len", len(text)).Msg("allocation generated")
	return text, nil
}
