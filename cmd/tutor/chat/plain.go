package chatcmder

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/cliui"
	"github.com/papercomputeco/tutor/pkg/render"
	"github.com/papercomputeco/tutor/pkg/utils"
)

// runPlain is the line-oriented session: one prompt per message, the
// reply rendered below it.
func runPlain(cmd *cobra.Command, env *cmdenv.Env, conv *conversation) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	tty := cmdenv.IsTerminal(out)

	term := render.NewTerminal(render.TerminalConfig{
		Out:      out,
		TTY:      tty,
		Width:    cmdenv.TerminalWidth(out),
		Markdown: env.Markdown(out),
	})

	fmt.Fprintln(out)
	if conv.ID() != "" {
		fmt.Fprintf(out, "  %s Resuming %s %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(conv.Title()),
			cliui.DimStyle.Render("("+utils.Truncate(conv.ID(), utils.ListTitleLen)+")"),
		)
	} else {
		fmt.Fprintf(out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	fmt.Fprintf(out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(env.Config.Client.Model),
	)
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	prompt := cliui.UserPrompt.Render("you> ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		if conv.Attached() {
			fmt.Fprint(out, cliui.DimStyle.Render("[image] "))
		}
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			break
		}

		input := scanner.Text()
		if name, arg, ok := parseCommand(input); ok {
			switch name {
			case "/exit", "/quit":
				fmt.Fprintln(out)
				return nil
			case "/new":
				conv.Reset()
				fmt.Fprintf(out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
			case "/image":
				if err := conv.Attach(arg); err != nil {
					cliui.Fail(errOut, err)
				}
			}
			continue
		}

		if !conv.Attached() && strings.TrimSpace(input) == "" {
			continue
		}

		if !tty {
			fmt.Fprintln(out)
		}
		err := conv.Send(cmd.Context(), input, term)
		term.Finish()
		if !report(errOut, err) {
			return err
		}
		fmt.Fprintln(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}
