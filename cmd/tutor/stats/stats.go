// Package statscmder provides the stats command for answer statistics and
// the wrong-answer book.
package statscmder

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/cliui"
	"github.com/papercomputeco/tutor/pkg/utils"
)

const statsLongDesc string = `Show answer statistics and wrongly answered questions.

Examples:
  tutor stats overview
  tutor stats wrongbook
  tutor stats wrongbook --group 2
  tutor stats wrongbook --ungrouped`

const statsShortDesc string = "Show answer statistics and the wrongbook"

func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
	}

	cmd.AddCommand(newOverviewCmd())
	cmd.AddCommand(newWrongbookCmd())

	return cmd
}

func newOverviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show attempt totals and accuracy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			o, err := env.Client.StatsOverview(cmd.Context(), env.Session)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %s %d\n", cliui.KeyStyle.Render("Attempts:"), o.TotalAttempts)
			fmt.Fprintf(out, "  %s %d\n", cliui.KeyStyle.Render("Correct: "), o.CorrectAttempts)
			fmt.Fprintf(out, "  %s %d\n", cliui.KeyStyle.Render("Wrong:   "), o.WrongAttempts)
			fmt.Fprintf(out, "  %s %.1f%%\n\n", cliui.KeyStyle.Render("Accuracy:"), o.Accuracy*100)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newWrongbookCmd() *cobra.Command {
	var f api.WrongbookFilter

	cmd := &cobra.Command{
		Use:   "wrongbook",
		Short: "List wrongly answered questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.Ungrouped && f.GroupID > 0 {
				return fmt.Errorf("--group and --ungrouped are mutually exclusive")
			}

			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			entries, err := env.Client.Wrongbook(cmd.Context(), env.Session, f)
			if err != nil {
				return err
			}
			PrintWrongbook(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().Int64Var(&f.GroupID, "group", 0, "Only entries in this group")
	cmd.Flags().BoolVar(&f.Ungrouped, "ungrouped", false, "Only entries outside any group")
	cmdenv.AddClientFlags(cmd)

	return cmd
}

// PrintWrongbook writes wrongbook entries, newest first as returned.
func PrintWrongbook(out io.Writer, entries []api.WrongbookEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(out, "\n  %s Nothing in the wrongbook.\n\n", cliui.DimStyle.Render("●"))
		return
	}

	for _, e := range entries {
		when := ""
		if !e.CreatedAt.IsZero() {
			when = e.CreatedAt.Local().Format(time.DateTime)
		}
		group := "ungrouped"
		if e.GroupID != nil {
			group = fmt.Sprintf("group %d", *e.GroupID)
		}

		fmt.Fprintf(out, "\n  %s %s %s\n",
			cliui.IDStyle.Render(fmt.Sprintf("#%d", e.Question.ID)),
			e.Question.Stem,
			cliui.DimStyle.Render("("+group+")"),
		)
		fmt.Fprintf(out, "      %s %s  %s %s  %s\n",
			cliui.KeyStyle.Render("chose"), e.Chosen,
			cliui.KeyStyle.Render("answer"), e.Question.Answer,
			cliui.DimStyle.Render(when),
		)
		for _, s := range e.Snippets {
			fmt.Fprintf(out, "      %s %s\n",
				cliui.DimStyle.Render(fmt.Sprintf("[doc %d §%d]", s.DocumentID, s.SegmentIndex)),
				utils.Truncate(s.Content, 72),
			)
		}
	}
	fmt.Fprintln(out)
}
