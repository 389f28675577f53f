package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		result := Truncate("this is a long string", 10)
		Expect(result).To(Equal("this is a ..."))
	})

	It("counts runes, not bytes", func() {
		Expect(Truncate("极限的定义与性质", 4)).To(Equal("极限的定..."))
		Expect(Truncate("极限", 2)).To(Equal("极限"))
	})
})

var _ = Describe("FormatTitle", func() {
	It("collapses whitespace", func() {
		Expect(FormatTitle("  limits \n and\tcontinuity ", TopicTitleLen)).To(Equal("limits and continuity"))
	})

	It("truncates long titles for lists", func() {
		Expect(FormatTitle("eigenvalues of symmetric matrices", ListTitleLen)).To(Equal("eigenvalues of s..."))
	})

	It("uses the default title when blank", func() {
		Expect(FormatTitle("", ListTitleLen)).To(Equal(DefaultTitle))
		Expect(FormatTitle(" \n\t", ListTitleLen)).To(Equal(DefaultTitle))
	})
})
