// Package devservercmder provides the devserver command, which runs the
// in-memory backend stand-in for local development.
package devservercmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/config"
	"github.com/papercomputeco/tutor/pkg/devserver"
)

type devServerCommander struct {
	listen     string
	token      string
	chunkDelay time.Duration
}

const devServerLongDesc string = `Run a local development server that speaks the tutor backend API.

Conversations, documents, questions and the wrongbook live in memory and
are lost on exit. Chat replies are scripted and streamed in small chunks.
Messages starting with one of these commands pick a script:
  /error    stream an error frame after some thinking
  /empty    finish without any thinking or answer
  /cut      close the stream without a done frame
  /plain    answer without thinking

Examples:
  tutor devserver
  tutor devserver --listen :9000 --token secret
  tutor devserver --chunk-delay 50ms`

const devServerShortDesc string = "Run the local development server"

func NewDevServerCmd() *cobra.Command {
	cmder := &devServerCommander{}

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: devServerShortDesc,
		Long:  devServerLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd)
			if err != nil {
				return err
			}
			cmder.listen = env.Config.DevServer.Listen

			server := devserver.NewServer(devserver.Config{
				ListenAddr: cmder.listen,
				Token:      cmder.token,
				ChunkDelay: cmder.chunkDelay,
			}, env.Logger)

			errChan := make(chan error, 1)
			go func() {
				if err := server.Run(); err != nil {
					errChan <- fmt.Errorf("dev server error: %w", err)
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case err := <-errChan:
				return err
			case sig := <-sigChan:
				env.Logger.Info("received signal, shutting down", "signal", sig.String())
				return server.Shutdown()
			}
		},
	}

	config.AddStringFlag(cmd, config.DevServerFlags, config.FlagListen, &cmder.listen)
	cmd.Flags().StringVar(&cmder.token, "token", "", "Only accept this bearer token (default: any non-empty token)")
	cmd.Flags().DurationVar(&cmder.chunkDelay, "chunk-delay", 30*time.Millisecond, "Pause between streamed chunks")

	return cmd
}
