package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-simulator/internal/app"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
	"github.com/fairyhunter13/ai-interview-simulator/pkg/randx"
)

// scriptedAnswer is one entry of an --answers file, consumed in question order.
type scriptedAnswer struct {
	Transcript string  `yaml:"transcript" json:"transcript"`
	Duration   float64 `yaml:"duration" json:"duration"`
}

type runOutput struct {
	Session *domain.InterviewSession `json:"session,omitempty"`
	Report  *domain.InterviewReport  `json:"report"`
}

func loadAnswers(path string) ([]scriptedAnswer, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers %s: %w", path, err)
	}
	var out []scriptedAnswer
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return out, nil
}

func newRunCmd() *cobra.Command {
	var (
		f           interviewFlags
		answersFile string
		withSession bool
		apiKey      string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full interview and print the report",
		Long: "Starts an interview, answers every question with the scripted answers " +
			"(or simulated transcripts once they run out), completes it and prints the report.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			scripted, err := loadAnswers(answersFile)
			if err != nil {
				return err
			}
			cfg, err := f.loadConfig()
			if err != nil {
				return err
			}
			comps, err := app.BuildComponents(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = comps.Close() }()

			iv := comps.NewInterview(cfg)
			iv.SetAPIKey(apiKey)
			if _, err := iv.SetConfig(ctx, patch); err != nil {
				return err
			}
			sess, err := iv.Start(ctx)
			if err != nil {
				return err
			}
			for i, q := range sess.Questions {
				ans, err := answerFor(ctx, comps, q, i, scripted)
				if err != nil {
					return err
				}
				if _, _, err := iv.SubmitAnswer(ctx, ans); err != nil {
					return err
				}
				if _, err := iv.Next(ctx); err != nil {
					return err
				}
			}
			rep, err := iv.Complete(ctx)
			if err != nil {
				return err
			}
			if rep != nil {
				slog.Info("interview scored",
					slog.Float64("overall", rep.OverallScore),
					slog.String("recommendation", string(rep.Recommendation)))
			}

			out := runOutput{Report: rep}
			if withSession {
				out.Session = iv.Snapshot().Session
			}
			return write(cmd.OutOrStdout(), f.format, out)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&answersFile, "answers", "a", "", "YAML or JSON list of {transcript, duration} answers in question order")
	cmd.Flags().BoolVar(&withSession, "session", false, "Include the session with its answers in the output")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Provider key for this run (overrides the environment)")
	return cmd
}

// answerFor returns the scripted answer of question i or a simulated one.
func answerFor(ctx context.Context, comps *app.Components, q domain.InterviewQuestion, i int, scripted []scriptedAnswer) (domain.InterviewAnswer, error) {
	if i < len(scripted) {
		return domain.InterviewAnswer{QuestionID: q.ID, Transcript: scripted[i].Transcript, Duration: scripted[i].Duration}, nil
	}
	text, err := comps.Transcriber.Mock(ctx)
	if err != nil {
		return domain.InterviewAnswer{}, err
	}
	limit := float64(max(q.TimeLimit, 45))
	return domain.InterviewAnswer{QuestionID: q.ID, Transcript: text, Duration: randx.Between(comps.RNG, 30, limit)}, nil
}
