// Package quizcmder provides the quiz command for generating and answering
// practice questions from knowledge-base documents.
package quizcmder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tutor/cmd/tutor/cmdenv"
	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/cliui"
)

const quizLongDesc string = `Generate practice questions from a document and answer them.

Question types: single, multiple, judgment, short. Multiple-choice answers
may be given in any order and separator ("c a", "A,C").

Examples:
  tutor quiz generate --doc 1 --count 5 --types single,multiple
  tutor quiz recent --doc 1
  tutor quiz answer 12 B
  tutor quiz answer 13 "a, c"`

const quizShortDesc string = "Generate and answer practice questions"

func NewQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: quizShortDesc,
		Long:  quizLongDesc,
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newRecentCmd())
	cmd.AddCommand(newAnswerCmd())

	return cmd
}

func newGenerateCmd() *cobra.Command {
	var req api.QuestionGenerateRequest

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate questions for a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}
			req.Model = env.Config.Client.Model

			var qs []api.Question
			err = cliui.Step(cmd.ErrOrStderr(), "Generating questions", func() error {
				var err error
				qs, err = env.Client.GenerateQuestions(cmd.Context(), env.Session, req)
				return err
			})
			if err != nil {
				return err
			}

			printQuestions(cmd.OutOrStdout(), qs)
			return nil
		},
	}

	cmd.Flags().Int64Var(&req.DocumentID, "doc", 0, "Document id to generate from")
	cmd.Flags().IntVarP(&req.Count, "count", "n", 3, "Number of questions")
	cmd.Flags().StringSliceVarP(&req.Types, "types", "t", []string{api.QuestionSingle}, "Question types")
	cmd.Flags().StringVar(&req.ChapterHint, "hint", "", "Chapter or topic to focus on")
	_ = cmd.MarkFlagRequired("doc")
	cmdenv.AddClientFlags(cmd)

	return cmd
}

func newRecentCmd() *cobra.Command {
	var docID int64

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently generated questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			qs, err := env.Client.RecentQuestions(cmd.Context(), env.Session, docID)
			if err != nil {
				return err
			}
			printQuestions(cmd.OutOrStdout(), qs)
			return nil
		},
	}

	cmd.Flags().Int64Var(&docID, "doc", 0, "Only questions from this document")
	cmdenv.AddClientFlags(cmd)

	return cmd
}

func newAnswerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answer <question-id> <answer>",
		Short: "Answer a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid question id %q", args[0])
			}

			env, err := cmdenv.Connect(cmd)
			if err != nil {
				return err
			}

			q := findQuestion(cmd, env, id)
			chosen := api.NormalizeAnswer(q.Kind(), args[1])

			res, err := env.Client.AttemptQuestion(cmd.Context(), env.Session, id, chosen)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Correct {
				fmt.Fprintf(out, "\n  %s Correct (%s)\n", cliui.SuccessMark, res.Chosen)
			} else {
				fmt.Fprintf(out, "\n  %s Not quite (%s)\n", cliui.FailMark, res.Chosen)
				if q.Answer != "" {
					fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("Answer:"), q.Answer)
				}
			}
			if q.Explanation != "" {
				fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render(q.Explanation))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmdenv.AddClientFlags(cmd)
	return cmd
}

// findQuestion looks the question up among recent ones so the answer can
// be normalized for its type. Unknown questions are treated as single choice.
func findQuestion(cmd *cobra.Command, env *cmdenv.Env, id int64) api.Question {
	qs, err := env.Client.RecentQuestions(cmd.Context(), env.Session, 0)
	if err != nil {
		env.Logger.Debug("looking up question type failed", "question_id", id, "error", err)
		return api.Question{ID: id}
	}
	for _, q := range qs {
		if q.ID == id {
			return q
		}
	}
	return api.Question{ID: id}
}

func printQuestions(out io.Writer, qs []api.Question) {
	if len(qs) == 0 {
		fmt.Fprintf(out, "\n  %s No questions.\n\n", cliui.DimStyle.Render("●"))
		return
	}

	for _, q := range qs {
		fmt.Fprintf(out, "\n  %s %s %s\n",
			cliui.IDStyle.Render(fmt.Sprintf("#%d", q.ID)),
			cliui.DimStyle.Render("["+q.Kind()+"]"),
			q.Stem,
		)
		for _, o := range q.Options {
			fmt.Fprintf(out, "      %s. %s\n", cliui.KeyStyle.Render(o.Key), o.Text)
		}
	}
	fmt.Fprintln(out)
}
