package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/textx"
)

// SystemPrompt instructs the model to score blind and answer in JSON only.
const SystemPrompt = `You are an expert technical interviewer evaluating candidate responses.
Score objectively using the provided rubric. Return ONLY valid JSON.
IMPORTANT: Apply blind scoring. Ignore any personal identifiers and focus solely on content quality.`

const defaultLLMConfidence = 75

// maxPromptTranscript bounds the answer text sent to the provider, in runes.
const maxPromptTranscript = 12000

// BuildPrompt renders the user prompt for one answer.
func BuildPrompt(req domain.ScoringRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate this interview answer for a %s position.\n\n", req.Role)
	fmt.Fprintf(&b, "**Question:** %s\n", req.Question.Text)
	fmt.Fprintf(&b, "**Expected Topics:** %s\n", strings.Join(req.Question.ExpectedTopics, ", "))
	fmt.Fprintf(&b, "**Candidate Answer:** %s\n\n", textx.Truncate(req.Answer.Transcript, maxPromptTranscript))

	b.WriteString("Rubric (score each dimension from 1-5):\n")
	for _, r := range Rubric {
		fmt.Fprintf(&b, "- %s (%s): %s.", r.Dimension, r.Label, r.Description)
		for _, l := range r.Levels {
			fmt.Fprintf(&b, " %d=%s;", l.Score, l.Label)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Provide evidence-based explanations. Return JSON in this exact format:
{
  "dimensions": [
    {
      "dimension": "correctness",
      "score": <1-5>,
      "explanation": "<why this score>",
      "evidence": ["<quote from answer>"],
      "suggestions": ["<improvement tip>"]
    },
    { "dimension": "depth", ... },
    { "dimension": "communication", ... },
    { "dimension": "problem-solving", ... },
    { "dimension": "relevance", ... }
  ],
  "biasFlags": [],
  "calibrationNote": "<any calibration notes>",
  "confidence": <50-100>
}`)
	return b.String()
}

type llmResponse struct {
	Dimensions      []domain.DimensionScore `json:"dimensions"`
	BiasFlags       []domain.BiasFlag       `json:"biasFlags"`
	CalibrationNote string                  `json:"calibrationNote"`
	Confidence      float64                 `json:"confidence"`
}

// LLMScorer scores answers through a chat-completion provider.
// Every failure is returned as a *domain.ProviderError; it never falls back.
type LLMScorer struct {
	client    domain.ChatClient
	apiKey    string
	maxTokens int
	cleaner   *ai.ResponseCleaner
}

// NewLLMScorer returns a scorer using client. apiKey is used when a request
// does not carry its own key.
func NewLLMScorer(client domain.ChatClient, apiKey string, maxTokens int) *LLMScorer {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &LLMScorer{client: client, apiKey: apiKey, maxTokens: maxTokens, cleaner: ai.NewResponseCleaner()}
}

// Provider names the underlying chat provider.
func (s *LLMScorer) Provider() string {
	if s == nil || s.client == nil {
		return "none"
	}
	return s.client.Provider()
}

// HasKey reports whether a request with requestKey could reach the provider.
func (s *LLMScorer) HasKey(requestKey string) bool {
	return s != nil && s.client != nil && (requestKey != "" || s.apiKey != "")
}

// Score implements domain.AnswerScorer.
func (s *LLMScorer) Score(ctx context.Context, req domain.ScoringRequest) (domain.AnswerScore, error) {
	provider := s.Provider()
	key := req.APIKey
	if key == "" {
		key = s.apiKey
	}
	if s.client == nil || key == "" {
		return domain.AnswerScore{}, domain.NewProviderError(provider, domain.FailureUnavailable, errors.New("no API key configured"))
	}

	raw, err := s.client.ChatJSON(ctx, key, SystemPrompt, BuildPrompt(req), s.maxTokens)
	if err != nil {
		var pe *domain.ProviderError
		if errors.As(err, &pe) {
			return domain.AnswerScore{}, err
		}
		return domain.AnswerScore{}, domain.NewProviderError(provider, domain.FailureNetwork, err)
	}

	parsed, err := s.parse(raw)
	if err != nil {
		if r := ai.DetectRefusal(raw); r.IsRefusal {
			err = fmt.Errorf("model declined to score (%s, %q): %w", r.RefusalType, r.Indicator, err)
		}
		return domain.AnswerScore{}, domain.NewProviderError(provider, domain.FailureMalformed, err)
	}

	confidence := parsed.Confidence
	if confidence == 0 {
		confidence = defaultLLMConfidence
	}
	flags := parsed.BiasFlags
	if flags == nil {
		flags = []domain.BiasFlag{}
	}
	return domain.AnswerScore{
		QuestionID:      req.Question.ID,
		Dimensions:      parsed.Dimensions,
		OverallScore:    WeightedScore(parsed.Dimensions),
		BiasFlags:       flags,
		CalibrationNote: parsed.CalibrationNote,
		Confidence:      confidence,
	}, nil
}

func (s *LLMScorer) parse(raw string) (llmResponse, error) {
	cleaned, err := s.cleaner.CleanAndValidateJSON(raw)
	if err != nil {
		return llmResponse{}, err
	}
	if err := ValidateResponse(cleaned); err != nil {
		return llmResponse{}, err
	}
	var out llmResponse
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return llmResponse{}, err
	}
	if err := ValidateDimensions(out.Dimensions); err != nil {
		return llmResponse{}, err
	}
	for i := range out.Dimensions {
		if out.Dimensions[i].Evidence == nil {
			out.Dimensions[i].Evidence = []string{}
		}
		if out.Dimensions[i].Suggestions == nil {
			out.Dimensions[i].Suggestions = []string{}
		}
	}
	slices.SortFunc(out.Dimensions, func(a, b domain.DimensionScore) int {
		return slices.Index(domain.Dimensions, a.Dimension) - slices.Index(domain.Dimensions, b.Dimension)
	})
	return out, nil
}
