package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

// maxJSONBody caps JSON request bodies; transcripts are the largest payload.
const maxJSONBody = 1 << 20

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		// report wire names instead of Go field names
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return vld
}

// FieldError is one entry of the details list of a 400 response.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func fieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// bindJSON decodes the request body into dst and validates it. On failure it
// writes the 400 response itself and returns false.
func bindJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, fmt.Errorf("%w: empty body", domain.ErrInvalidArgument), nil)
			return false
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]int64{"max_bytes": mbe.Limit},
			}})
			return false
		}
		writeError(w, r, fmt.Errorf("%w: invalid json: %v", domain.ErrInvalidArgument, err), nil)
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), fieldErrors(err))
		return false
	}
	return true
}

// questionQuery parses the preview parameters of GET /v1/questions on top of
// the default configuration.
func questionQuery(q url.Values) (domain.InterviewConfig, []FieldError, error) {
	cfg := domain.DefaultInterviewConfig()
	if v := q.Get("role"); v != "" {
		cfg.Role = domain.Role(v)
	}
	if v := q.Get("type"); v != "" {
		cfg.Type = domain.InterviewType(v)
	}
	if v := q.Get("difficulty"); v != "" {
		cfg.Difficulty = domain.Difficulty(v)
	}
	for _, p := range []struct {
		key string
		dst *int
	}{
		{"count", &cfg.TotalQuestions},
		{"time_per_question", &cfg.TimePerQuestion},
	} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, []FieldError{{Field: p.key, Rule: "numeric"}}, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidArgument, p.key)
		}
		*p.dst = n
	}
	if cfg.TotalQuestions > 50 {
		return cfg, []FieldError{{Field: "count", Rule: "lte", Param: "50"}}, fmt.Errorf("%w: count too large", domain.ErrInvalidArgument)
	}
	if err := getValidator().Struct(cfg); err != nil {
		return cfg, fieldErrors(err), fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument)
	}
	return cfg, nil, nil
}
