// Package tutorcmder is the root of the tutor command tree.
package tutorcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/tutor/cmd/tutor/auth"
	chatcmder "github.com/papercomputeco/tutor/cmd/tutor/chat"
	configcmder "github.com/papercomputeco/tutor/cmd/tutor/config"
	conversationscmder "github.com/papercomputeco/tutor/cmd/tutor/conversations"
	devservercmder "github.com/papercomputeco/tutor/cmd/tutor/devserver"
	docscmder "github.com/papercomputeco/tutor/cmd/tutor/docs"
	quizcmder "github.com/papercomputeco/tutor/cmd/tutor/quiz"
	statscmder "github.com/papercomputeco/tutor/cmd/tutor/stats"
	wrongbookcmder "github.com/papercomputeco/tutor/cmd/tutor/wrongbook"
	versioncmder "github.com/papercomputeco/tutor/cmd/version"
)

const tutorLongDesc string = `Tutor is a terminal client for the learning assistant.

Get started:
  tutor auth               Store your login token
  tutor chat               Chat with the assistant, thinking shown as it streams
  tutor quiz generate      Generate practice questions from a document
  tutor stats wrongbook    Review the questions you got wrong

Run "tutor devserver" for a local backend with scripted replies.`

const tutorShortDesc string = "Tutor - learning assistant in your terminal"

func NewTutorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tutor",
		Short:        tutorShortDesc,
		Long:         tutorLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .tutor/ config directory")

	// Add subcommands
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(conversationscmder.NewConversationsCmd())
	cmd.AddCommand(devservercmder.NewDevServerCmd())
	cmd.AddCommand(docscmder.NewDocsCmd())
	cmd.AddCommand(quizcmder.NewQuizCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(wrongbookcmder.NewWrongbookCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
