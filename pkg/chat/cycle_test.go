package chat_test

import (
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/papercomputeco/tutor/pkg/chat"
	"github.com/papercomputeco/tutor/pkg/stream"
	"github.com/papercomputeco/tutor/pkg/throttle"
)

var _ = Describe("Cycle", func() {
	var (
		clk   *testingclock.FakeClock
		rec   *recorder
		cycle *chat.Cycle
	)

	BeforeEach(func() {
		clk = testingclock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
		rec = &recorder{}
		cycle = chat.NewCycle(rec, throttle.Config{Clock: clk})
	})

	applyLines := func(lines string) {
		d := stream.NewDecoder(nil)
		for _, f := range append(d.Feed(lines), d.Finish()...) {
			cycle.Apply(f)
		}
	}

	It("walks the thinking lifecycle", func() {
		Expect(cycle.Phase()).To(Equal(chat.Idle))

		cycle.Apply(stream.Thinking("a"))
		Expect(cycle.Phase()).To(Equal(chat.Thinking))

		cycle.Apply(stream.Thinking("b"))
		Expect(cycle.Phase()).To(Equal(chat.Thinking))

		cycle.Apply(stream.Content("c"))
		Expect(cycle.Phase()).To(Equal(chat.Finalized))

		cycle.Apply(stream.Done())
		Expect(cycle.Terminal()).To(BeTrue())

		Expect(cycle.End()).To(Succeed())
		Expect(cycle.Thinking()).To(Equal("ab"))
		Expect(cycle.Content()).To(Equal("c"))
		Expect(rec.Events()).To(Equal([]string{
			"start",
			"think:a",
			"think:ab",
			"finish",
			"answer:c",
		}))
	})

	It("decodes and applies a recorded stream", func() {
		applyLines(`{"message":{"thinking":"a"}}
{"message":{"thinking":"b"}}
{"type":"message","content":"c"}
{"done":true}
`)
		Expect(cycle.End()).To(Succeed())
		Expect(cycle.Thinking()).To(Equal("ab"))
		Expect(cycle.Content()).To(Equal("c"))
	})

	It("finalizes thinking on done", func() {
		cycle.Apply(stream.Thinking("only thoughts"))
		cycle.Apply(stream.Done())

		Expect(cycle.Phase()).To(Equal(chat.Finalized))
		Expect(rec.Events()).To(Equal([]string{"start", "think:only thoughts", "finish"}))
		Expect(cycle.End()).To(Succeed())
	})

	It("never re-enters thinking once finalized", func() {
		cycle.Apply(stream.Thinking("a"))
		cycle.Apply(stream.Content("answer"))
		cycle.Apply(stream.Thinking("late"))

		Expect(cycle.Phase()).To(Equal(chat.Finalized))
		Expect(cycle.Thinking()).To(Equal("a"))
		Expect(rec.Events()).NotTo(ContainElement("think:alate"))
	})

	It("stays idle on content and still opens thinking that follows", func() {
		cycle.Apply(stream.Content("A"))
		Expect(cycle.Phase()).To(Equal(chat.Idle))

		cycle.Apply(stream.Thinking("t"))
		Expect(cycle.Phase()).To(Equal(chat.Thinking))

		clk.Step(time.Second)
		cycle.Apply(stream.Content("B"))
		Expect(cycle.Phase()).To(Equal(chat.Finalized))

		cycle.Apply(stream.Done())
		Expect(cycle.End()).To(Succeed())
		Expect(cycle.Thinking()).To(Equal("t"))
		Expect(cycle.Content()).To(Equal("AB"))
		Expect(rec.Events()).To(Equal([]string{
			"answer:A",
			"start",
			"think:t",
			"finish",
			"answer:AB",
		}))
	})

	It("keeps thinking from a decoded stream that answers first", func() {
		applyLines(`{"content":"A"}
{"thinking":"t"}
{"done":true}
`)
		Expect(cycle.End()).To(Succeed())
		Expect(cycle.Phase()).To(Equal(chat.Finalized))
		Expect(cycle.Thinking()).To(Equal("t"))
		Expect(cycle.Content()).To(Equal("A"))
	})

	Describe("errors", func() {
		It("reports a protocol error and ignores later frames", func() {
			applyLines(`{"message":{"content":"partial "}}
{"type":"error","message":"boom"}
{"message":{"content":"ignored"}}
{"done":true}
`)

			err := cycle.End()
			var pe *chat.ProtocolError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Message).To(Equal("boom"))
			Expect(cycle.Content()).To(Equal("partial "))
			Expect(rec.Answers()).To(Equal([]string{"partial "}))
		})

		It("finalizes thinking on error", func() {
			cycle.Apply(stream.Thinking("hmm"))
			cycle.Apply(stream.Error("quota exceeded"))

			Expect(cycle.Phase()).To(Equal(chat.Finalized))
			Expect(rec.Events()).To(ContainElement("finish"))
			Expect(cycle.End()).To(MatchError("quota exceeded"))
		})

		It("keeps the phase idle on an immediate error", func() {
			cycle.Apply(stream.Error("bad key"))
			Expect(cycle.Phase()).To(Equal(chat.Idle))
			Expect(rec.Events()).To(BeEmpty())
		})

		It("falls back to a generic message", func() {
			cycle.Apply(stream.Error(""))
			Expect(cycle.End()).To(MatchError(stream.DefaultErrorMessage))
		})

		It("reports an empty completion", func() {
			applyLines("{\"done\":true}\n")
			Expect(cycle.End()).To(MatchError(chat.ErrEmptyCompletion))
		})

		It("does not report an empty completion after thinking only", func() {
			cycle.Apply(stream.Thinking("t"))
			cycle.Apply(stream.Done())
			Expect(cycle.End()).To(Succeed())
		})

		It("reports an incomplete stream", func() {
			cycle.Apply(stream.Content("half an ans"))
			Expect(cycle.End()).To(MatchError(chat.ErrIncomplete))
			Expect(rec.Answers()).To(Equal([]string{"half an ans"}))
		})

		It("reports an incomplete empty stream", func() {
			Expect(cycle.End()).To(MatchError(chat.ErrIncomplete))
		})
	})

	Describe("throttled rendering", func() {
		It("renders fewer times than deltas but ends with the full text", func() {
			words := strings.Fields("the limit of a function describes its behaviour near a point")
			for _, w := range words {
				cycle.Apply(stream.Content(w + " "))
			}

			Expect(len(rec.Answers())).To(BeNumerically("<", len(words)))

			Expect(cycle.End()).To(MatchError(chat.ErrIncomplete))
			answers := rec.Answers()
			Expect(answers[len(answers)-1]).To(Equal(strings.Join(words, " ") + " "))
		})

		It("flushes a deferred render when the interval elapses", func() {
			cycle.Apply(stream.Content("a"))
			clk.Step(10 * time.Millisecond)
			cycle.Apply(stream.Content("b"))
			Expect(rec.Answers()).To(Equal([]string{"a"}))

			clk.Step(throttle.DefaultInterval)
			Eventually(rec.Answers).Should(Equal([]string{"a", "ab"}))
		})

		It("forces a render on done inside the interval", func() {
			cycle.Apply(stream.Content("a"))
			cycle.Apply(stream.Content("b"))
			cycle.Apply(stream.Done())

			Expect(rec.Answers()).To(Equal([]string{"a", "ab"}))

			clk.Step(time.Second)
			Consistently(rec.Answers, 50*time.Millisecond).Should(HaveLen(2))
		})

		It("does not render after End", func() {
			cycle.Apply(stream.Content("a"))
			cycle.Apply(stream.Content("b"))
			Expect(cycle.End()).To(MatchError(chat.ErrIncomplete))

			clk.Step(time.Second)
			Consistently(rec.Answers, 50*time.Millisecond).Should(Equal([]string{"a", "ab"}))
		})
	})

	It("is idempotent at End", func() {
		cycle.Apply(stream.Content("x"))
		cycle.Apply(stream.Done())

		Expect(cycle.End()).To(Succeed())
		Expect(cycle.End()).To(Succeed())
		Expect(rec.Answers()).To(Equal([]string{"x"}))
	})

	It("names the phases", func() {
		Expect(chat.Idle.String()).To(Equal("idle"))
		Expect(chat.Thinking.String()).To(Equal("thinking"))
		Expect(chat.Finalized.String()).To(Equal("finalized"))
	})
})
