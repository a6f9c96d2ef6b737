// Package questionbank holds the interview question templates and generates
// question sets for an interview configuration.
package questionbank

import (
	_ "embed"
	"fmt"
	"slices"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/randx"
)

//go:embed templates.yaml
var defaultCatalog []byte

// Template is a question before it is bound to a session.
type Template struct {
	Text           string                  `yaml:"text" json:"text"`
	Category       domain.QuestionCategory `yaml:"category" json:"category"`
	Difficulty     domain.Difficulty       `yaml:"difficulty" json:"difficulty"`
	Roles          []domain.Role           `yaml:"roles" json:"roles"`
	FollowUp       string                  `yaml:"followUp" json:"followUp"`
	ExpectedTopics []string                `yaml:"expectedTopics" json:"expectedTopics"`
}

// Option is a selectable value with display text.
type Option struct {
	Value       string `yaml:"value" json:"value"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
}

// FrameworkComponent is one weighted part of a behavioral framework.
type FrameworkComponent struct {
	Key         string  `yaml:"key" json:"key"`
	Label       string  `yaml:"label" json:"label"`
	Description string  `yaml:"description" json:"description"`
	Weight      float64 `yaml:"weight" json:"weight"`
}

// Framework is a structured behavioral assessment method such as STAR.
type Framework struct {
	ID          string               `yaml:"id" json:"id"`
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description" json:"description"`
	Components  []FrameworkComponent `yaml:"components" json:"components"`
}

// Principle is a leadership principle used in behavioral interviews.
type Principle struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is the full content of a templates file.
type Catalog struct {
	Roles                []Option    `yaml:"roles" json:"roles"`
	Difficulties         []Option    `yaml:"difficulties" json:"difficulties"`
	Types                []Option    `yaml:"types" json:"types"`
	TimeOptions          []int       `yaml:"timeOptions" json:"timeOptions"`
	QuestionCountOptions []int       `yaml:"questionCountOptions" json:"questionCountOptions"`
	Frameworks           []Framework `yaml:"frameworks" json:"frameworks"`
	LeadershipPrinciples []Principle `yaml:"leadershipPrinciples" json:"leadershipPrinciples"`
	Questions            []Template  `yaml:"questions" json:"-"`
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("op=questionbank.ParseCatalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return Catalog{}, fmt.Errorf("op=questionbank.ParseCatalog: %w", err)
	}
	return c, nil
}

func (c Catalog) validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: catalog has no questions", domain.ErrInvalidArgument)
	}
	for i, q := range c.Questions {
		if q.Text == "" {
			return fmt.Errorf("%w: question %d has empty text", domain.ErrInvalidArgument, i)
		}
		if q.Difficulty.Rank() < 0 {
			return fmt.Errorf("%w: question %d has unknown difficulty %q", domain.ErrInvalidArgument, i, q.Difficulty)
		}
		if q.Category != domain.CategoryBehavioral && !q.Category.IsTechnical() {
			return fmt.Errorf("%w: question %d has unknown category %q", domain.ErrInvalidArgument, i, q.Category)
		}
		if len(q.Roles) == 0 {
			return fmt.Errorf("%w: question %d has no roles", domain.ErrInvalidArgument, i)
		}
	}
	return nil
}

// Bank generates question sets from a catalog. Safe for concurrent use.
type Bank struct {
	catalog Catalog
	rng     randx.Source
	counter atomic.Int64
}

// New builds a Bank over catalog using rng for in-tier ordering.
func New(catalog Catalog, rng randx.Source) *Bank {
	if rng == nil {
		rng = randx.NewTimeSeeded()
	}
	return &Bank{catalog: catalog, rng: rng}
}

// NewDefault builds a Bank over the embedded catalog.
func NewDefault(rng randx.Source) (*Bank, error) {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		return nil, err
	}
	return New(c, rng), nil
}

// Catalog returns the catalog the bank draws from.
func (b *Bank) Catalog() Catalog { return b.catalog }

// Templates returns a copy of all question templates.
func (b *Bank) Templates() []Template { return slices.Clone(b.catalog.Questions) }

// Generate implements domain.QuestionGenerator.
func (b *Bank) Generate(cfg domain.InterviewConfig) []domain.InterviewQuestion {
	return b.GenerateQuestions(cfg.Role, cfg.Difficulty, cfg.Type, cfg.TotalQuestions, cfg.TimePerQuestion)
}

// GenerateQuestions returns at most count distinct questions for role, keeping
// only the categories of interviewType, ordered by distance from difficulty.
// Questions at the same distance appear in random order. Fewer candidates than
// count yields fewer questions.
func (b *Bank) GenerateQuestions(role domain.Role, difficulty domain.Difficulty, interviewType domain.InterviewType, count, timePerQuestion int) []domain.InterviewQuestion {
	if count <= 0 {
		return []domain.InterviewQuestion{}
	}
	candidates := make([]Template, 0, len(b.catalog.Questions))
	for _, q := range b.catalog.Questions {
		if !slices.Contains(q.Roles, role) {
			continue
		}
		switch interviewType {
		case domain.TypeBehavioral:
			if q.Category != domain.CategoryBehavioral {
				continue
			}
		case domain.TypeTechnical:
			if !q.Category.IsTechnical() {
				continue
			}
		}
		candidates = append(candidates, q)
	}

	target := difficulty.Rank()
	if target < 0 {
		target = domain.DifficultyMid.Rank()
	}
	b.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	slices.SortStableFunc(candidates, func(x, y Template) int {
		return distance(x.Difficulty, target) - distance(y.Difficulty, target)
	})

	if len(candidates) > count {
		candidates = candidates[:count]
	}
	out := make([]domain.InterviewQuestion, 0, len(candidates))
	for _, q := range candidates {
		out = append(out, domain.InterviewQuestion{
			ID:             fmt.Sprintf("q-%d", b.counter.Add(1)),
			Text:           q.Text,
			Category:       q.Category,
			Difficulty:     q.Difficulty,
			FollowUp:       q.FollowUp,
			ExpectedTopics: slices.Clone(q.ExpectedTopics),
			TimeLimit:      timePerQuestion,
		})
	}
	return out
}

func distance(d domain.Difficulty, target int) int {
	r := d.Rank() - target
	if r < 0 {
		return -r
	}
	return r
}
