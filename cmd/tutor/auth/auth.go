// Package authcmder provides the auth command for storing the login session.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/cliui"
	"github.com/papercomputeco/tutor/pkg/session"
)

const authLongDesc string = `Store the login token for the learning assistant backend.

Sign in through the web client, copy the token it issued and paste it here.
The token is stored in session.toml in the .tutor/ directory (mode 0600) and
sent as a bearer token on every request. Setting TUTOR_TOKEN overrides the
stored session.

Examples:
  tutor auth                         Prompt for the token
  echo $TOKEN | tutor auth           Pipe the token from stdin
  tutor auth --username alice        Remember who the token belongs to
  tutor auth --status                Show the current session
  tutor auth --logout                Forget the stored session`

const authShortDesc string = "Store the login token for the backend"

type authCommander struct {
	username string
	userID   int64
	status   bool
	logout   bool
}

func NewAuthCmd() *cobra.Command {
	cmder := &authCommander{}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			mgr, err := session.NewManager(configDir)
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}

			switch {
			case cmder.logout:
				return cmder.runLogout(cmd.OutOrStdout(), mgr)
			case cmder.status:
				return cmder.runStatus(cmd.OutOrStdout(), mgr)
			default:
				return cmder.runLogin(cmd.InOrStdin(), cmd.OutOrStdout(), mgr)
			}
		},
	}

	cmd.Flags().StringVar(&cmder.username, "username", "", "Username the token belongs to")
	cmd.Flags().Int64Var(&cmder.userID, "user-id", 0, "User id the token belongs to")
	cmd.Flags().BoolVar(&cmder.status, "status", false, "Show the current session")
	cmd.Flags().BoolVar(&cmder.logout, "logout", false, "Remove the stored session")

	return cmd
}

func (c *authCommander) runLogin(in io.Reader, out io.Writer, mgr *session.Manager) error {
	token, err := readToken(in, out)
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return errors.New("token cannot be empty")
	}

	s := api.Session{Token: token, UserID: c.userID, Username: c.username}
	if err := mgr.Login(s); err != nil {
		return err
	}

	who := ""
	if c.username != "" {
		who = " for " + cliui.NameStyle.Render(c.username)
	}
	fmt.Fprintf(out, "\n  %s Stored session%s %s\n\n",
		cliui.SuccessMark,
		who,
		cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
	)
	return nil
}

func (c *authCommander) runStatus(out io.Writer, mgr *session.Manager) error {
	s, err := mgr.Current()
	if errors.Is(err, session.ErrNoSession) {
		fmt.Fprintf(out, "\n  %s Not signed in. Use 'tutor auth' to store a token.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}
	if err != nil {
		return err
	}

	name := s.Username
	if name == "" {
		name = "<unknown user>"
	}
	source := mgr.GetTarget()
	if os.Getenv(session.TokenEnvVar) != "" {
		source = session.TokenEnvVar
	}

	fmt.Fprintf(out, "\n  %s Signed in as %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(name),
		cliui.DimStyle.Render("("+source+")"),
	)
	return nil
}

func (c *authCommander) runLogout(out io.Writer, mgr *session.Manager) error {
	if err := mgr.Logout(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n  %s Removed stored session.\n\n", cliui.SuccessMark)
	return nil
}

// readToken reads the token from in. A terminal gets a hidden prompt;
// anything else is read up to the first newline.
func readToken(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Paste your login token: ")
		tok, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return string(tok), nil
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
