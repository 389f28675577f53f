package tutorcmder_test

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tutorcmder "github.com/papercomputeco/tutor/cmd/tutor"
	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/devserver"
	"github.com/papercomputeco/tutor/pkg/dotdir"
	"github.com/papercomputeco/tutor/pkg/logger"
)

var _ = Describe("NewTutorCmd", func() {
	It("registers every subcommand", func() {
		cmd := tutorcmder.NewTutorCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"auth", "chat", "config", "conversations", "devserver",
			"docs", "quiz", "stats", "wrongbook", "version",
		))
	})

	It("prints the version", func() {
		out := &bytes.Buffer{}
		cmd := tutorcmder.NewTutorCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"version"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(HavePrefix("Version: dev"))
	})
})

var _ = Describe("tutor against the dev server", func() {
	var (
		dir    string
		target string
	)

	run := func(stdin string, args ...string) (string, error) {
		out := &bytes.Buffer{}
		cmd := tutorcmder.NewTutorCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--config-dir", dir))
		err := cmd.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		GinkgoT().Setenv("TUTOR_TOKEN", "")
		dir = GinkgoT().TempDir()

		srv := devserver.NewServer(devserver.Config{Token: "s3cret"}, nil)
		ts := httptest.NewServer(srv.Handler())
		DeferCleanup(ts.Close)
		target = ts.URL

		_, err := run("", "config", "set", "client.api_target", target)
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a login", func() {
		_, err := run("", "conversations", "list")
		Expect(err).To(MatchError(ContainSubstring("tutor auth")))
	})

	It("rejects a wrong token", func() {
		_, err := run("wrong\n", "auth")
		Expect(err).NotTo(HaveOccurred())

		_, err = run("", "docs", "list")
		Expect(err).To(MatchError(api.ErrUnauthorized))
	})

	Context("when signed in", func() {
		BeforeEach(func() {
			out, err := run("Bearer s3cret\n", "auth", "--username", "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Stored session"))
		})

		It("reports the session", func() {
			out, err := run("", "auth", "--status")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("alice"))
		})

		It("sends a one-shot message and resumes the conversation", func() {
			out, err := run("", "chat", "sequences and series")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("sequences and series"))
			Expect(out).To(ContainSubstring("lim x->a f(x) = L"))

			active, err := dotdir.NewManager().LoadActive(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).NotTo(BeNil())

			_, err = run("", "chat", "follow up")
			Expect(err).NotTo(HaveOccurred())

			again, err := dotdir.NewManager().LoadActive(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.SessionID).To(Equal(active.SessionID))

			out, err = run("", "conversations", "show", active.SessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("follow up"))

			out, err = run("", "conversations", "list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("sequences"))
		})

		It("warns about a cut reply without failing", func() {
			out, err := run("", "chat", "--new", "/cut")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("half way"))
			Expect(out).To(ContainSubstring("ended before the model finished"))
		})

		It("fails on a stream error", func() {
			_, err := run("", "chat", "--new", "/error")
			Expect(err).To(MatchError(ContainSubstring("overloaded")))
		})

		It("fails on an empty completion", func() {
			_, err := run("", "chat", "--new", "/empty")
			Expect(err).To(MatchError(ContainSubstring("returned nothing")))
		})

		It("runs a line-oriented session from stdin", func() {
			out, err := run("derivatives\n/new\n/plain hello\n/exit\n", "chat", "--plain")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("lim x->a f(x) = L"))
			Expect(out).To(ContainSubstring("just an answer."))
			Expect(out).To(ContainSubstring("New conversation"))
			Expect(filepath.Join(dir, logger.LogFileName)).To(BeAnExistingFile())

			out, err = run("", "conversations", "list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("derivatives"))
		})

		It("rejects --new together with --conversation", func() {
			_, err := run("", "chat", "--new", "-c", "abc", "hi")
			Expect(err).To(MatchError(ContainSubstring("mutually exclusive")))
		})

		It("lists and summarizes documents", func() {
			out, err := run("", "docs", "list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Calculus I lecture notes"))

			out, err = run("", "docs", "summary", "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(out)).NotTo(BeEmpty())
		})

		It("quizzes and records wrong answers", func() {
			out, err := run("", "quiz", "generate", "--doc", "1", "-n", "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("#1"))
			Expect(out).To(ContainSubstring("#2"))

			out, err = run("", "quiz", "answer", "1", "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Correct"))

			out, err = run("", "quiz", "answer", "2", "b")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Not quite"))

			out, err = run("", "stats", "overview")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("50.0%"))

			out, err = run("", "wrongbook", "create", "Limits")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Limits"))

			_, err = run("", "wrongbook", "assign", "2", "1")
			Expect(err).NotTo(HaveOccurred())

			out, err = run("", "stats", "wrongbook", "--group", "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("#2"))

			out, err = run("", "stats", "wrongbook", "--ungrouped")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Nothing in the wrongbook"))

			_, err = run("", "wrongbook", "assign", "2", "none")
			Expect(err).NotTo(HaveOccurred())

			out, err = run("", "stats", "wrongbook", "--ungrouped")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("#2"))
		})

		It("rejects a duplicate group name", func() {
			_, err := run("", "wrongbook", "create", "Limits")
			Expect(err).NotTo(HaveOccurred())

			_, err = run("", "wrongbook", "create", "Limits")
			Expect(err).To(HaveOccurred())
		})

		It("deletes the active conversation and clears it", func() {
			_, err := run("", "chat", "limits")
			Expect(err).NotTo(HaveOccurred())
			active, err := dotdir.NewManager().LoadActive(dir)
			Expect(err).NotTo(HaveOccurred())

			_, err = run("", "conversations", "delete", active.SessionID)
			Expect(err).NotTo(HaveOccurred())

			cleared, err := dotdir.NewManager().LoadActive(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cleared).To(BeNil())
		})
	})
})
