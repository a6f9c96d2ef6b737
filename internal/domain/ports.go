package domain

// ChatClient (port) sends a system+user prompt to an LLM and returns the raw
// text content, which the caller expects to be a JSON object.
type ChatClient interface {
	ChatJSON(ctx Context, apiKey, systemPrompt, userPrompt string, maxTokens int) (string, error)
	Provider() string
}

// SpeechToText (port) turns recorded audio into a transcript.
type SpeechToText interface {
	Transcribe(ctx Context, apiKey string, audio []byte) (string, error)
}

// ScoringRequest carries everything a scorer needs for one answer.
type ScoringRequest struct {
	Question InterviewQuestion
	Answer   InterviewAnswer
	Role     Role
	// APIKey, when set, overrides the configured provider key.
	APIKey string
}

// AnswerScorer (port) evaluates one answer.
type AnswerScorer interface {
	Score(ctx Context, req ScoringRequest) (AnswerScore, error)
}

// QuestionGenerator (port) produces question sets for a configuration.
type QuestionGenerator interface {
	Generate(cfg InterviewConfig) []InterviewQuestion
}
