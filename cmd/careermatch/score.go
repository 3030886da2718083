package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/careermatch/internal/presentation"
)

var (
	scoreSkill         float64
	scoreAccessibility float64
	scoreWorkType      float64
)

var scoreCmd = &cobra.Command{
	Use:   "score <job title>...",
	Short: "Compute the presentable score for a job title offline",
	Long: `Compute the percentages the dashboard shows for a job title. The result
depends only on the title (and, in blend mode, the breakdown flags), so the
same title always yields the same numbers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		n := current.cfg.Normalizer()
		breakdown := presentation.Breakdown{
			Skill:         scoreSkill,
			Accessibility: scoreAccessibility,
			WorkType:      scoreWorkType,
		}
		current.printer.PrintScore(title, n.Mode, n.Normalize(title, breakdown))
		return nil
	},
}

func init() {
	f := scoreCmd.Flags()
	f.Float64Var(&scoreSkill, "skill", 0, "Backend skill sub-score (blend mode)")
	f.Float64Var(&scoreAccessibility, "accessibility", 0, "Backend accessibility sub-score (blend mode)")
	f.Float64Var(&scoreWorkType, "work-type", 0, "Backend work type sub-score (blend mode)")
	rootCmd.AddCommand(scoreCmd)
}
