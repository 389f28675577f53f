// Package wrongbookcmder provides the wrongbook command for organizing
// wrongly answered questions into groups.
package wrongbookcmder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/cliui"
)

const wrongbookLongDesc string = `Organize wrongly answered questions into groups.

Use "tutor stats wrongbook" to list the entries themselves.

Examples:
  tutor wrongbook groups
  tutor wrongbook create "Set theory"
  tutor wrongbook rename 2 "Sets and maps"
  tutor wrongbook assign 14 2
  tutor wrongbook assign 14 none
  tutor wrongbook delete 2`

const wrongbookShortDesc string = "Manage wrongbook groups"

func NewWrongbookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrongbook",
		Short: wrongbookShortDesc,
		Long:  wrongbookLongDesc,
	}

	cmd.AddCommand(newGroupsCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newRenameCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newAssignCmd())

	return cmd
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			groups, err := env.Client.ListGroups(cmd.Context(), env.Session)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintf(out, "\n  %s No groups.\n\n", cliui.DimStyle.Render("●"))
				return nil
			}
			fmt.Fprintln(out)
			for _, g := range groups {
				fmt.Fprintf(out, "  %s  %s\n", cliui.IDStyle.Render(fmt.Sprintf("%4d", g.ID)), g.Name)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("group name cannot be empty")
			}

			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			g, err := env.Client.CreateGroup(cmd.Context(), env.Session, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Created group %s %s\n\n",
				cliui.SuccessMark, cliui.IDStyle.Render(strconv.FormatInt(g.ID, 10)), g.Name)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <group-id> <name>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			if name == "" {
				return fmt.Errorf("group name cannot be empty")
			}

			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			g, err := env.Client.RenameGroup(cmd.Context(), env.Session, id, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Renamed group %d to %s\n\n", cliui.SuccessMark, g.ID, g.Name)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <group-id>",
		Short: "Delete a group; its questions become ungrouped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "group")
			if err != nil {
				return err
			}

			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			if err := env.Client.DeleteGroup(cmd.Context(), env.Session, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Deleted group %d\n\n", cliui.SuccessMark, id)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newAssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <question-id> <group-id|none>",
		Short: "Move a question into a group, or out of any group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qid, err := parseID(args[0], "question")
			if err != nil {
				return err
			}

			var gid *int64
			if !strings.EqualFold(args[1], "none") {
				id, err := parseID(args[1], "group")
				if err != nil {
					return err
				}
				gid = &id
			}

			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			if err := env.Client.AssignQuestionGroup(cmd.Context(), env.Session, qid, gid); err != nil {
				return err
			}

			target := "no group"
			if gid != nil {
				target = fmt.Sprintf("group %d", *gid)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Moved question %d to %s\n\n", cliui.SuccessMark, qid, target)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}
