package render_test

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tutor/pkg/config"
	"github.com/papercomputeco/tutor/pkg/render"
)

var _ = Describe("Terminal", func() {
	var (
		out *bytes.Buffer
		md  *render.Markdown
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		md = render.NewMarkdown(config.StyleNoTTY, 80)
	})

	Context("off a terminal", func() {
		It("writes the thinking and the final answer once", func() {
			t := render.NewTerminal(render.TerminalConfig{Out: out, Markdown: md})

			t.ThinkingStarted()
			t.ThinkingUpdated("pondering")
			t.ThinkingFinished()
			t.AnswerUpdated("Part")
			t.AnswerUpdated("Partial answer")
			Expect(out.Len()).To(Equal(0))

			t.Finish()
			plain := ansi.Strip(out.String())
			Expect(strings.Count(plain, "Partial answer")).To(Equal(1))
			Expect(strings.Count(plain, "pondering")).To(Equal(1))
			Expect(plain).To(ContainSubstring("Thinking (done)"))
			Expect(strings.Index(plain, "pondering")).To(BeNumerically("<", strings.Index(plain, "Partial answer")))
		})

		It("writes only the answer when there was no thinking", func() {
			t := render.NewTerminal(render.TerminalConfig{Out: out, Markdown: md})
			t.AnswerUpdated("Straight answer")
			t.Finish()

			Expect(out.String()).To(ContainSubstring("Straight answer"))
			Expect(out.String()).NotTo(ContainSubstring("Thinking"))
		})

		It("writes nothing for an empty cycle", func() {
			t := render.NewTerminal(render.TerminalConfig{Out: out, Markdown: md})
			t.Finish()
			Expect(out.Len()).To(Equal(0))
		})
	})

	Context("on a terminal", func() {
		var t *render.Terminal

		BeforeEach(func() {
			t = render.NewTerminal(render.TerminalConfig{Out: out, TTY: true, Markdown: md})
		})

		It("streams thinking deltas", func() {
			t.ThinkingStarted()
			t.ThinkingUpdated("first ")
			t.ThinkingUpdated("first second")
			t.ThinkingFinished()

			plain := ansi.Strip(out.String())
			Expect(plain).To(ContainSubstring("▼ Thinking"))
			Expect(plain).To(ContainSubstring("first second"))
			Expect(strings.Count(plain, "first")).To(Equal(1))
			Expect(plain).To(ContainSubstring("▶ Thinking (done)"))
		})

		It("collapses the panel when thinking finishes", func() {
			t.ThinkingStarted()
			t.ThinkingUpdated("line one\nline two")
			t.ThinkingFinished()

			tail := out.String()[strings.LastIndex(out.String(), "line two"):]
			Expect(tail).To(ContainSubstring(ansi.CursorUp(2) + "\r" + ansi.EraseScreenBelow))
			Expect(ansi.Strip(tail)).To(ContainSubstring("▶ Thinking (done)"))
		})

		It("counts wrapped thinking rows at the terminal width", func() {
			t = render.NewTerminal(render.TerminalConfig{Out: out, TTY: true, Width: 10, Markdown: md})

			t.ThinkingStarted()
			t.ThinkingUpdated(strings.Repeat("x", 25))
			t.ThinkingFinished()

			Expect(out.String()).To(ContainSubstring(ansi.CursorUp(3) + "\r" + ansi.EraseScreenBelow))
		})

		It("moves the answer below thinking that starts after it", func() {
			t.AnswerUpdated("Alpha")
			t.ThinkingStarted()
			Expect(out.String()).To(ContainSubstring(ansi.EraseScreenBelow))

			t.ThinkingUpdated("late")
			t.ThinkingFinished()

			plain := ansi.Strip(out.String())
			Expect(strings.Count(plain, "Alpha")).To(Equal(2))
			Expect(strings.LastIndex(plain, "Alpha")).To(BeNumerically(">", strings.LastIndex(plain, "Thinking (done)")))
		})

		It("redraws the answer in place", func() {
			t.AnswerUpdated("One")
			Expect(out.String()).NotTo(ContainSubstring("\x1b[J"))

			t.AnswerUpdated("One two")
			Expect(out.String()).To(ContainSubstring(ansi.EraseScreenBelow))
			Expect(ansi.Strip(out.String())).To(ContainSubstring("One two"))
		})

		It("starts fresh after Finish", func() {
			t.AnswerUpdated("first reply")
			t.Finish()
			before := out.Len()

			t.AnswerUpdated("second reply")
			Expect(out.String()[before:]).NotTo(ContainSubstring(ansi.EraseScreenBelow))
		})
	})
})
