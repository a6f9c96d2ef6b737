package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/internal/usecase"
)

// interviewFlags are shared by every subcommand that builds a question set.
type interviewFlags struct {
	configFile      string
	role            string
	interviewType   string
	difficulty      string
	count           int
	timePerQuestion int
	seed            uint64
	format          string
	latency         bool
}

func (f *interviewFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "YAML or JSON file with a partial interview configuration")
	fl.StringVarP(&f.role, "role", "r", "", "Job role (frontend, backend, fullstack, machine-learning, data-science, devops)")
	fl.StringVarP(&f.interviewType, "type", "t", "", "Interview type (behavioral, technical, mixed)")
	fl.StringVarP(&f.difficulty, "difficulty", "d", "", "Difficulty (junior, mid, senior, staff)")
	fl.IntVarP(&f.count, "questions", "n", 0, "Number of questions")
	fl.IntVar(&f.timePerQuestion, "time", 0, "Seconds per question")
	fl.Uint64Var(&f.seed, "seed", 0, "Random seed for reproducible runs (0 uses the clock)")
	fl.StringVarP(&f.format, "format", "f", "json", "Output format (json, yaml)")
	fl.BoolVar(&f.latency, "simulate-latency", false, "Keep the artificial delays of the offline simulators")
}

// patch merges the config file with explicit flags; flags win.
func (f *interviewFlags) patch(cmd *cobra.Command) (usecase.ConfigPatch, error) {
	var p usecase.ConfigPatch
	if f.configFile != "" {
		data, err := os.ReadFile(f.configFile)
		if err != nil {
			return p, fmt.Errorf("read config %s: %w", f.configFile, err)
		}
		// YAML is a superset of JSON, one decoder covers both.
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parse config %s: %w", f.configFile, err)
		}
	}
	fl := cmd.Flags()
	if fl.Changed("role") {
		v := domain.Role(f.role)
		p.Role = &v
	}
	if fl.Changed("type") {
		v := domain.InterviewType(f.interviewType)
		p.Type = &v
	}
	if fl.Changed("difficulty") {
		v := domain.Difficulty(f.difficulty)
		p.Difficulty = &v
	}
	if fl.Changed("questions") {
		v := f.count
		p.TotalQuestions = &v
	}
	if fl.Changed("time") {
		v := f.timePerQuestion
		p.TimePerQuestion = &v
	}
	if err := validator.New().Struct(p); err != nil {
		return p, fmt.Errorf("invalid interview configuration: %w", err)
	}
	return p, nil
}

// loadConfig reads the environment and applies the CLI overrides.
func (f *interviewFlags) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if f.seed != 0 {
		cfg.RandomSeed = f.seed
	}
	if !f.latency {
		cfg.MockScoringDelayMin, cfg.MockScoringDelayMax = 0, 0
		cfg.MockTranscriptionDelayMin, cfg.MockTranscriptionDelayMax = 0, 0
	}
	return cfg, nil
}

func write(w io.Writer, format string, v interface{}) error {
	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		// round-trip through JSON so YAML keys match the API field names
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(generic)
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "mockinterview",
		Short:         "AI mock interview simulator",
		Long:          "Generates interview questions, simulates or scores answers and prints a hiring report with bias and calibration checks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			slog.SetDefault(observability.NewLogger(config.Config{LogLevel: level, OTELServiceName: "mockinterview"}, cmd.ErrOrStderr()))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline details to stderr")
	root.AddCommand(newQuestionsCmd(), newRunCmd())
	return root
}
