package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

// audioExtensions are the container formats the transcription endpoint accepts.
var audioExtensions = map[string]bool{
	".webm": true, ".mp3": true, ".mp4": true, ".m4a": true, ".mpeg": true,
	".mpga": true, ".wav": true, ".ogg": true, ".oga": true, ".flac": true,
}

// AudioFilename picks the upload filename from the sniffed container type.
// Unknown content is sent as webm, the format browsers record in.
func AudioFilename(audio []byte) string {
	ext := mimetype.Detect(audio).Extension()
	if !audioExtensions[ext] {
		ext = ".webm"
	}
	return "recording" + ext
}

// Transcribe implements domain.SpeechToText.
func (c *Client) Transcribe(ctx context.Context, apiKey string, audio []byte) (string, error) {
	if apiKey == "" {
		return "", domain.NewProviderError(ProviderName, domain.FailureUnavailable, errors.New("missing API key"))
	}
	if len(audio) == 0 {
		return "", domain.NewProviderError(ProviderName, domain.FailureMalformed, errors.New("empty audio"))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", AudioFilename(audio))
	if err == nil {
		_, err = fw.Write(audio)
	}
	if err == nil {
		err = mw.WriteField("model", c.cfg.TranscriptionModel)
	}
	if err == nil && c.cfg.TranscriptionLanguage != "" {
		err = mw.WriteField("language", c.cfg.TranscriptionLanguage)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return "", domain.NewProviderError(ProviderName, domain.FailureNetwork, err)
	}

	raw, err := c.post(ctx, "transcribe", "/audio/transcriptions", apiKey, mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return "", err
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", domain.NewProviderError(ProviderName, domain.FailureMalformed, err)
	}
	return strings.TrimSpace(out.Text), nil
}
