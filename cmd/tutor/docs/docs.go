// Package docscmder provides the docs command for the knowledge base.
package docscmder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/cliui"
	"github.com/papercomputeco/tutor/pkg/utils"
)

const docsLongDesc string = `Browse the knowledge-base documents questions are generated from.

Examples:
  tutor docs list
  tutor docs summary 1
  tutor docs delete 1`

const docsShortDesc string = "Browse knowledge-base documents"

func NewDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: docsShortDesc,
		Long:  docsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSummaryCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			docs, err := env.Client.ListDocuments(cmd.Context(), env.Session)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(docs) == 0 {
				fmt.Fprintf(out, "\n  %s No documents.\n\n", cliui.DimStyle.Render("●"))
				return nil
			}

			fmt.Fprintln(out)
			for _, d := range docs {
				updated := ""
				if !d.UpdatedAt.IsZero() {
					updated = d.UpdatedAt.Local().Format(time.DateOnly)
				}
				fmt.Fprintf(out, "  %s  %-35s  %s  %s\n",
					cliui.IDStyle.Render(fmt.Sprintf("%4d", d.ID)),
					utils.Truncate(d.Title, 32),
					cliui.DimStyle.Render(fmt.Sprintf("%s, %d segments", d.Status, d.SegmentCount)),
					cliui.DimStyle.Render(updated),
				)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <id>",
		Short: "Print a document's summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}

			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			summary, err := env.Client.DocumentSummary(cmd.Context(), env.Session, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, env.Markdown(out).Render(summary))
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}

			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			if err := env.Client.DeleteDocument(cmd.Context(), env.Session, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Deleted document %d\n\n", cliui.SuccessMark, id)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}
