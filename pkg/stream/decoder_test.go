package stream_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tutor/pkg/logger"
	"github.com/papercomputeco/tutor/pkg/stream"
)

const transcript = `{"message":{"thinking":"a"}}
{"message":{"thinking":"b"}}
not json at all
{"type":"message","content":"c"}

   
{"response":"数学：极限。"}
{"done":true}
`

func decodeAll(chunks ...string) []stream.Frame {
	d := stream.NewDecoder(nil)
	var frames []stream.Frame
	for _, c := range chunks {
		frames = append(frames, d.Feed(c)...)
	}
	return append(frames, d.Finish()...)
}

var _ = Describe("Decoder", func() {
	want := []stream.Frame{
		stream.Thinking("a"),
		stream.Thinking("b"),
		stream.Content("c"),
		stream.Content("数学：极限。"),
		stream.Done(),
	}

	Describe("Feed", func() {
		It("decodes a whole transcript in one chunk", func() {
			Expect(decodeAll(transcript)).To(Equal(want))
		})

		It("retains the partial line without a newline", func() {
			d := stream.NewDecoder(nil)
			Expect(d.Feed(`{"content":"x"}`)).To(BeEmpty())
			Expect(d.Pending()).To(Equal(`{"content":"x"}`))
			Expect(d.Pending()).NotTo(ContainSubstring("\n"))

			Expect(d.Feed("\n")).To(Equal([]stream.Frame{stream.Content("x")}))
			Expect(d.Pending()).To(BeEmpty())
		})

		It("keeps parsing after a malformed line", func() {
			d := stream.NewDecoder(nil)
			frames := d.Feed("{oops\n{\"content\":\"ok\"}\n")
			Expect(frames).To(Equal([]stream.Frame{stream.Content("ok")}))
			Expect(d.Dropped()).To(Equal(1))
		})

		It("drops JSON values that are not objects", func() {
			d := stream.NewDecoder(nil)
			Expect(d.Feed("[1,2]\n\"text\"\n42\n")).To(BeEmpty())
			Expect(d.Dropped()).To(Equal(3))
		})

		It("tolerates CRLF line endings", func() {
			Expect(decodeAll("{\"content\":\"x\"}\r\n{\"done\":true}\r\n")).To(Equal([]stream.Frame{
				stream.Content("x"),
				stream.Done(),
			}))
		})

		It("logs dropped lines at debug level", func() {
			var buf bytes.Buffer
			d := stream.NewDecoder(logger.New(logger.WithWriter(&buf), logger.WithDebug(true)))
			d.Feed("garbage\n")
			Expect(buf.String()).To(ContainSubstring("dropping malformed stream line"))
		})
	})

	Describe("chunk boundaries", func() {
		It("yields the same frames one byte at a time", func() {
			raw := []byte(transcript)
			chunks := make([]string, len(raw))
			for i := range raw {
				chunks[i] = string(raw[i : i+1])
			}
			Expect(decodeAll(chunks...)).To(Equal(want))
		})

		It("yields the same frames for every two-way split", func() {
			for i := 0; i <= len(transcript); i++ {
				Expect(decodeAll(transcript[:i], transcript[i:])).To(Equal(want), "split at %d", i)
			}
		})

		It("yields the same frames for every three-way split", func() {
			for i := 0; i <= len(transcript); i += 3 {
				for j := i; j <= len(transcript); j += 5 {
					Expect(decodeAll(transcript[:i], transcript[i:j], transcript[j:])).To(Equal(want))
				}
			}
		})
	})

	Describe("Finish", func() {
		It("parses the last unterminated line", func() {
			d := stream.NewDecoder(nil)
			Expect(d.Feed(`{"content":"a"}` + "\n" + `{"done":true}`)).To(Equal([]stream.Frame{stream.Content("a")}))
			Expect(d.Finish()).To(Equal([]stream.Frame{stream.Done()}))
		})

		It("may return a thinking and content pair", func() {
			d := stream.NewDecoder(nil)
			d.Feed(`{"message":{"thinking":"t","content":"c"}}`)
			Expect(d.Finish()).To(Equal([]stream.Frame{stream.Thinking("t"), stream.Content("c")}))
		})

		It("returns nothing for a blank or malformed tail", func() {
			d := stream.NewDecoder(nil)
			d.Feed("   ")
			Expect(d.Finish()).To(BeEmpty())

			d.Feed(`{"content":`)
			Expect(d.Finish()).To(BeEmpty())
			Expect(d.Dropped()).To(Equal(1))
		})

		It("clears the pending buffer", func() {
			d := stream.NewDecoder(nil)
			d.Feed(`{"content":"a"}`)
			d.Finish()
			Expect(d.Pending()).To(BeEmpty())
			Expect(d.Finish()).To(BeEmpty())
		})
	})
})
