// Package conversationscmder provides the conversations command for
// listing, reading, creating and deleting conversations.
package conversationscmder

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/cliui"
	"github.com/papercomputeco/tutor/pkg/dotdir"
	"github.com/papercomputeco/tutor/pkg/utils"
)

const conversationsLongDesc string = `Manage conversations with the learning assistant.

The active conversation is the one "tutor chat" resumes. Creating a
conversation makes it active; deleting the active one clears it.

Examples:
  tutor conversations list
  tutor conversations show 3f6c...
  tutor conversations new "Limits and continuity"
  tutor conversations delete 3f6c...`

const conversationsShortDesc string = "List, show, create and delete conversations"

func NewConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   conversationsShortDesc,
		Long:    conversationsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			convs, err := env.Client.ListConversations(cmd.Context(), env.Session)
			if err != nil {
				return err
			}

			active, _ := dotdir.NewManager().LoadActive(env.ConfigDir)
			printList(cmd.OutOrStdout(), convs, active)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func printList(out io.Writer, convs []api.ConversationSummary, active *dotdir.ActiveConversation) {
	if len(convs) == 0 {
		fmt.Fprintf(out, "\n  %s No conversations yet. Start one with 'tutor chat'.\n\n", cliui.DimStyle.Render("●"))
		return
	}

	fmt.Fprintln(out)
	for _, c := range convs {
		marker := " "
		if active != nil && active.SessionID == c.SessionID {
			marker = cliui.SuccessMark
		}

		updated := "-"
		if !c.UpdatedAt.IsZero() {
			updated = c.UpdatedAt.Local().Format(time.DateTime)
		}

		fmt.Fprintf(out, "  %s %s  %-19s  %s  %s\n",
			marker,
			cliui.IDStyle.Render(c.SessionID),
			utils.FormatTitle(c.Title, utils.ListTitleLen),
			cliui.DimStyle.Render(updated),
			cliui.DimStyle.Render(c.ModelName),
		)
	}
	fmt.Fprintln(out)
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the messages of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			msgs, err := env.Client.GetConversation(cmd.Context(), env.Session, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			md := env.Markdown(out)
			for _, m := range msgs {
				switch m.Role {
				case "user":
					fmt.Fprintf(out, "\n%s%s\n", cliui.UserPrompt.Render("you> "), m.Content)
					for range m.Images {
						fmt.Fprintf(out, "     %s\n", cliui.DimStyle.Render("[image]"))
					}
				default:
					fmt.Fprint(out, md.Render(m.Content))
				}
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a conversation and make it active",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			title := ""
			if len(args) == 1 {
				title = strings.TrimSpace(args[0])
			}

			id, err := env.Client.NewConversation(cmd.Context(), env.Session, title, env.Config.Client.Model)
			if err != nil {
				return err
			}

			if err := dotdir.NewManager().SaveActive(&dotdir.ActiveConversation{
				SessionID: id,
				Title:     title,
				Model:     env.Config.Client.Model,
				UpdatedAt: time.Now(),
			}, env.ConfigDir); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Created %s %s\n\n",
				cliui.SuccessMark,
				cliui.IDStyle.Render(id),
				cliui.DimStyle.Render(utils.FormatTitle(title, utils.TopicTitleLen)),
			)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			id := args[0]
			if err := env.Client.DeleteConversation(cmd.Context(), env.Session, id); err != nil {
				return err
			}

			ddm := dotdir.NewManager()
			active, err := ddm.LoadActive(env.ConfigDir)
			if err == nil && active != nil && active.SessionID == id {
				if err := ddm.ClearActive(env.ConfigDir); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Deleted %s\n\n", cliui.SuccessMark, cliui.IDStyle.Render(id))
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}
