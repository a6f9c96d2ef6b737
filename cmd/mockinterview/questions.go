package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-interview-simulator/internal/app"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

func newQuestionsCmd() *cobra.Command {
	var f interviewFlags
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print a generated question set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			ic := patch.Apply(domain.DefaultInterviewConfig())
			if err := validator.New().Struct(ic); err != nil {
				return fmt.Errorf("invalid interview configuration: %w", err)
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

			return write(cmd.OutOrStdout(), f.format, struct {
				Config    domain.InterviewConfig     `json:"config"`
				Questions []domain.InterviewQuestion `json:"questions"`
			}{ic, comps.Bank.Generate(ic)})
		},
	}
	f.register(cmd)
	return cmd
}
