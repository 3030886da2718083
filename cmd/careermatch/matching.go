package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/careermatch/internal/api"
	"github.com/jonathan/careermatch/internal/types"
)

var (
	matchesJSON  bool
	courseSkills []string
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Show your job matches, skill gaps and course picks",
	RunE:  runMatches,
}

var explainCmd = &cobra.Command{
	Use:   "explain <jobID>",
	Short: "Show the detailed analysis of one match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := current.dashboardService()
		if err != nil {
			return err
		}
		view, err := svc.ExplainJob(cmd.Context(), args[0])
		if api.IsNotFound(err) {
			return fmt.Errorf("no match with job ID %q, run 'careermatch matches' to list them", args[0])
		}
		if err != nil {
			return loginHint(err)
		}
		current.printer.PrintExplain(view)
		return nil
	},
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Recommend courses for skills",
	Long:  "Recommend courses for the given --skill values, or for the skills your current matches call for.",
	RunE:  runCourses,
}

func init() {
	matchesCmd.Flags().BoolVar(&matchesJSON, "json", false, "Print the dashboard as JSON")
	coursesCmd.Flags().StringSliceVarP(&courseSkills, "skill", "s", nil, "Skill to find courses for (repeatable)")
	rootCmd.AddCommand(matchesCmd, explainCmd, coursesCmd)
}

func runMatches(cmd *cobra.Command, _ []string) error {
	svc, err := current.dashboardService()
	if err != nil {
		return err
	}
	d, err := svc.Load(cmd.Context())
	if err != nil {
		return loginHint(err)
	}

	if matchesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	current.printer.PrintDashboard(d)
	if d.Status != types.MatchingStatusReady {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Matching is still running, try again in a moment.")
		return nil
	}
	return current.printer.Matches(d.Matches)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if len(courseSkills) > 0 {
		courses, err := current.client.CoursesBySkills(ctx, courseSkills)
		if err != nil {
			return loginHint(err)
		}
		return current.printer.Courses(courses)
	}

	svc, err := current.dashboardService()
	if err != nil {
		return err
	}
	d, err := svc.Load(ctx)
	if err != nil {
		return loginHint(err)
	}
	if len(d.Skills) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No skills to recommend courses for yet.")
		return nil
	}
	return current.printer.Courses(d.Courses)
}
