package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/ai-interview-simulator/internal/analysis"
	"github.com/fairyhunter13/ai-interview-simulator/internal/bias"
	"github.com/fairyhunter13/ai-interview-simulator/internal/calibration"
	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/internal/scoring"
	"github.com/fairyhunter13/ai-interview-simulator/internal/usecase"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/textx"
)

// Transcriber turns uploaded audio into text; apiKey overrides the configured key.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, apiKey string) (string, error)
}

// Server aggregates handlers dependencies.
type Server struct {
	Cfg         config.Config
	Interview   *usecase.Interview
	Questions   domain.QuestionGenerator
	Transcriber Transcriber
	Analyzer    *analysis.Analyzer
	Sanitizer   *bias.Sanitizer
	RedisCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, iv *usecase.Interview, questions domain.QuestionGenerator, tr Transcriber, analyzer *analysis.Analyzer, redisCheck func(context.Context) error) *Server {
	if analyzer == nil {
		analyzer = analysis.NewAnalyzer(nil)
	}
	return &Server{
		Cfg:         cfg,
		Interview:   iv,
		Questions:   questions,
		Transcriber: tr,
		Analyzer:    analyzer,
		Sanitizer:   bias.NewSanitizer(),
		RedisCheck:  redisCheck,
	}
}

type apiKeyRequest struct {
	APIKey string `json:"api_key" validate:"max=512"`
}

type answerRequest struct {
	QuestionID      string  `json:"question_id" validate:"required,max=128"`
	Transcript      string  `json:"transcript" validate:"max=50000"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0,lte=7200"`
}

type answerResponse struct {
	Answer     domain.InterviewAnswer   `json:"answer"`
	Confidence domain.ConfidenceMetrics `json:"confidence"`
}

type confidenceRequest struct {
	Transcript      string  `json:"transcript" validate:"required,max=50000"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0,lte=7200"`
}

type confidenceResponse struct {
	Analysis    domain.AudioAnalysis      `json:"analysis"`
	Confidence  domain.ConfidenceMetrics  `json:"confidence"`
	FillerWords domain.FillerWordAnalysis `json:"fillerWords"`
}

type sanitizeRequest struct {
	Text string `json:"text" validate:"required,max=50000"`
}

type rubricResponse struct {
	Criteria []domain.RubricCriteria   `json:"criteria"`
	Anchors  []domain.CalibrationAnchor `json:"anchors"`
}

type completeResponse struct {
	Status domain.InterviewStatus  `json:"status"`
	Report *domain.InterviewReport `json:"report"`
}

// QuestionsHandler previews a question set without touching the interview.
func (s *Server) QuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, details, err := questionQuery(r.URL.Query())
		if err != nil {
			writeError(w, r, err, details)
			return
		}
		qs := s.Questions.Generate(cfg)
		if qs == nil {
			qs = []domain.InterviewQuestion{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg, "questions": qs})
	}
}

// RubricsHandler returns the rubric with weights and the calibration anchors.
func (s *Server) RubricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rubricResponse{Criteria: scoring.RubricWithWeights(), Anchors: calibration.Anchors})
	}
}

// SnapshotHandler returns the interview context.
func (s *Server) SnapshotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Interview.Snapshot())
	}
}

// ConfigHandler merges a partial configuration.
func (s *Server) ConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch usecase.ConfigPatch
		if !bindJSON(w, r, &patch) {
			return
		}
		cfg, err := s.Interview.SetConfig(r.Context(), patch)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

// APIKeyHandler stores or clears the per-session provider key. The key is
// never echoed back.
func (s *Server) APIKeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiKeyRequest
		if !bindJSON(w, r, &req) {
			return
		}
		s.Interview.SetAPIKey(strings.TrimSpace(req.APIKey))
		writeJSON(w, http.StatusOK, map[string]bool{"hasApiKey": s.Interview.APIKey() != ""})
	}
}

// StartHandler begins a session.
func (s *Server) StartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Interview.Start(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

// AnswerHandler records the answer to a question.
func (s *Server) AnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if !bindJSON(w, r, &req) {
			return
		}
		ans, metrics, err := s.Interview.SubmitAnswer(r.Context(), domain.InterviewAnswer{
			QuestionID: req.QuestionID,
			Transcript: req.Transcript,
			Duration:   req.DurationSeconds,
		})
		if err != nil {
			writeError(w, r, err, map[string]string{"question_id": req.QuestionID})
			return
		}
		writeJSON(w, http.StatusOK, answerResponse{Answer: ans, Confidence: metrics})
	}
}

// NextHandler advances to the next question.
func (s *Server) NextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.Interview.Next(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// CompleteHandler scores the session and returns the report.
func (s *Server) CompleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := s.Interview.Complete(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, completeResponse{Status: domain.StatusCompleted, Report: rep})
	}
}

// ResetHandler returns the interview to idle.
func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Interview.Reset(r.Context())
		writeJSON(w, http.StatusOK, s.Interview.Snapshot())
	}
}

// ReportHandler returns the report of the completed interview.
func (s *Server) ReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := s.Interview.Report()
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func allowedAudio(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		switch v := m.String(); {
		case strings.HasPrefix(v, "audio/"):
			return true
		case v == "video/webm", v == "video/mp4", v == "application/ogg":
			return true
		}
	}
	return false
}

// TranscribeHandler accepts a multipart "audio" part and returns its transcript.
func (s *Server) TranscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxAudioMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1024*1024)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) || strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]int64{"max_mb": s.Cfg.MaxAudioMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: audio file required", domain.ErrInvalidArgument), map[string]string{"field": "audio"})
			return
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: audio read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if int64(len(data)) > maxBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]int64{"max_mb": s.Cfg.MaxAudioMB},
			}})
			return
		}
		if len(data) == 0 {
			writeError(w, r, fmt.Errorf("%w: audio file is empty", domain.ErrInvalidArgument), map[string]string{"field": "audio"})
			return
		}
		mt := mimetype.Detect(data)
		if !allowedAudio(mt) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code:    "INVALID_ARGUMENT",
				Message: "unsupported media type for audio",
				Details: map[string]string{"mime": mt.String(), "filename": hdr.Filename},
			}})
			return
		}

		start := time.Now()
		text, err := s.Transcriber.Transcribe(r.Context(), data, s.Interview.APIKey())
		if err != nil {
			writeError(w, r, fmt.Errorf("op=httpserver.Transcribe: %w", err), nil)
			return
		}
		LoggerFrom(r).Info("audio transcribed",
			"mime", mt.String(),
			"bytes", len(data),
			"duration", time.Since(start))
		writeJSON(w, http.StatusOK, map[string]string{"transcript": textx.SanitizeText(text)})
	}
}

// ConfidenceHandler analyzes a transcript without recording it.
func (s *Server) ConfidenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confidenceRequest
		if !bindJSON(w, r, &req) {
			return
		}
		text := textx.SanitizeText(req.Transcript)
		an, metrics := s.Analyzer.Confidence(text, req.DurationSeconds)
		writeJSON(w, http.StatusOK, confidenceResponse{
			Analysis:    an,
			Confidence:  metrics,
			FillerWords: analysis.AnalyzeFillerWords(text, req.DurationSeconds),
		})
	}
}

// SanitizeHandler returns text with identifying details redacted.
func (s *Server) SanitizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sanitizeRequest
		if !bindJSON(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": s.Sanitizer.Sanitize(req.Text)})
	}
}

// ReadyzHandler reports readiness of the optional Redis limiter.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := []map[string]string{}
		ready := true
		if s.RedisCheck != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			entry := map[string]string{"name": "redis", "status": "ok"}
			if err := s.RedisCheck(ctx); err != nil {
				ready = false
				entry["status"] = "unavailable"
				entry["error"] = err.Error()
			}
			checks = append(checks, entry)
		}
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]interface{}{"ready": ready, "checks": checks})
	}
}
