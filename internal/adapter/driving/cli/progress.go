package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

func newSkillsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "skills <learner-id>",
		Short: "Show a learner's star-rated skills",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ratings, err := s.progress.SkillRatingsForLearner(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(ratings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No skills found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SKILL\tSTARS\tCREDENTIALS\tMAX_LEVEL")
			for _, r := range ratings {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.Skill, stars(r.Stars), r.CredentialCount, r.MaxNSQFLevel)
			}
			return w.Flush()
		}),
	}
}

func newNSQFCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "nsqf <learner-id>",
		Short: "Show a learner's progress across the NSQF levels",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			p, err := s.progress.NSQFProgressForLearner(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LEVEL\tNAME\tACHIEVED\tSKILLS")
			for _, l := range p.Levels {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", l.Level, l.Name, l.AchievedCount, strings.Join(l.SkillsAtLevel, ", "))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			switch {
			case p.MaxLevelReached:
				fmt.Fprintf(out, "Highest level: %d (maximum reached)\n", p.HighestAchievedLevel)
			case p.HighestAchievedLevel == 0:
				fmt.Fprintf(out, "No levels achieved yet. Next target: %d\n", p.NextTarget)
			default:
				fmt.Fprintf(out, "Highest level: %d. Next target: %d\n", p.HighestAchievedLevel, p.NextTarget)
			}
			if n := len(p.Anomalies); n > 0 {
				fmt.Fprintf(out, "%d credential(s) excluded for invalid data\n", n)
			}
			return nil
		}),
	}
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > model.MaxStars {
		n = model.MaxStars
	}
	return strings.Repeat("*", n) + strings.Repeat(".", model.MaxStars-n)
}
