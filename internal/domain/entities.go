package domain

import (
	"context"
	"time"
)

// Role enumerates the job roles questions can be generated for.
type Role string

const (
	RoleFrontend        Role = "frontend"
	RoleBackend         Role = "backend"
	RoleFullstack       Role = "fullstack"
	RoleMachineLearning Role = "machine-learning"
	RoleDataScience     Role = "data-science"
	RoleDevOps          Role = "devops"
)

// Roles lists every supported role in display order.
var Roles = []Role{RoleFrontend, RoleBackend, RoleFullstack, RoleMachineLearning, RoleDataScience, RoleDevOps}

// InterviewType selects which question categories are eligible.
type InterviewType string

const (
	TypeBehavioral InterviewType = "behavioral"
	TypeTechnical  InterviewType = "technical"
	TypeMixed      InterviewType = "mixed"
)

// Difficulty is the seniority level a question targets.
type Difficulty string

const (
	DifficultyJunior Difficulty = "junior"
	DifficultyMid    Difficulty = "mid"
	DifficultySenior Difficulty = "senior"
	DifficultyStaff  Difficulty = "staff"
)

// Difficulties lists difficulty levels in ascending order.
var Difficulties = []Difficulty{DifficultyJunior, DifficultyMid, DifficultySenior, DifficultyStaff}

// Rank returns the ordinal position of d (junior=0 .. staff=3) or -1 if unknown.
func (d Difficulty) Rank() int {
	for i, v := range Difficulties {
		if v == d {
			return i
		}
	}
	return -1
}

// QuestionCategory groups questions by the skill they probe.
type QuestionCategory string

const (
	CategoryBehavioral     QuestionCategory = "behavioral"
	CategorySystemDesign   QuestionCategory = "system-design"
	CategoryCodingConcepts QuestionCategory = "coding-concepts"
	CategoryProblemSolving QuestionCategory = "problem-solving"
	CategoryArchitecture   QuestionCategory = "architecture"
)

// IsTechnical reports whether c belongs to the technical category group.
func (c QuestionCategory) IsTechnical() bool {
	switch c {
	case CategorySystemDesign, CategoryCodingConcepts, CategoryProblemSolving, CategoryArchitecture:
		return true
	}
	return false
}

// InterviewStatus is the lifecycle state of the interview context.
type InterviewStatus string

const (
	StatusIdle       InterviewStatus = "idle"
	StatusSetup      InterviewStatus = "setup"
	StatusInProgress InterviewStatus = "in-progress"
	StatusProcessing InterviewStatus = "processing"
	StatusCompleted  InterviewStatus = "completed"
)

// InterviewConfig is the user-chosen setup of an interview.
// Invariants: TimePerQuestion > 0 (seconds); TotalQuestions >= 1.
type InterviewConfig struct {
	Role            Role          `json:"role" yaml:"role" validate:"required,oneof=frontend backend fullstack machine-learning data-science devops"`
	Type            InterviewType `json:"type" yaml:"type" validate:"required,oneof=behavioral technical mixed"`
	Difficulty      Difficulty    `json:"difficulty" yaml:"difficulty" validate:"required,oneof=junior mid senior staff"`
	TimePerQuestion int           `json:"timePerQuestion" yaml:"timePerQuestion" validate:"required,gt=0"`
	TotalQuestions  int           `json:"totalQuestions" yaml:"totalQuestions" validate:"required,gte=1"`
}

// DefaultInterviewConfig is the configuration used before the user changes anything.
func DefaultInterviewConfig() InterviewConfig {
	return InterviewConfig{
		Role:            RoleFrontend,
		Type:            TypeMixed,
		Difficulty:      DifficultyMid,
		TimePerQuestion: 120,
		TotalQuestions:  5,
	}
}

// InterviewQuestion is a generated question bound to a session.
type InterviewQuestion struct {
	ID             string           `json:"id"`
	Text           string           `json:"text"`
	Category       QuestionCategory `json:"category"`
	Difficulty     Difficulty       `json:"difficulty"`
	FollowUp       string           `json:"followUp,omitempty"`
	ExpectedTopics []string         `json:"expectedTopics"`
	TimeLimit      int              `json:"timeLimit"`
}

// FillerWordInstance counts one filler word occurrence group.
type FillerWordInstance struct {
	Word      string  `json:"word"`
	Timestamp float64 `json:"timestamp"`
	Count     int     `json:"count"`
}

// InterviewAnswer is the candidate's response to a question.
type InterviewAnswer struct {
	QuestionID      string               `json:"questionId" validate:"required"`
	Transcript      string               `json:"transcript"`
	Duration        float64              `json:"duration" validate:"gte=0"`
	FillerWords     []FillerWordInstance `json:"fillerWords,omitempty"`
	ConfidenceScore float64              `json:"confidenceScore"`
	SpeechRate      float64              `json:"speechRate"`
}

// InterviewSession is one run through a question set.
type InterviewSession struct {
	ID                   string              `json:"id"`
	Config               InterviewConfig     `json:"config"`
	Questions            []InterviewQuestion `json:"questions"`
	Answers              []InterviewAnswer   `json:"answers"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	Status               InterviewStatus     `json:"status"`
	StartedAt            time.Time           `json:"startedAt"`
	CompletedAt          *time.Time          `json:"completedAt,omitempty"`
}

// AnswerFor returns the first answer recorded for questionID.
func (s InterviewSession) AnswerFor(questionID string) (InterviewAnswer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return InterviewAnswer{}, false
}

// Context is an alias so ports can be declared without importing context everywhere.
type Context = context.Context
