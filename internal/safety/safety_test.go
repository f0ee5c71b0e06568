package safety_test

import (
	"errors"

	"github.com/kadai-ai/kadai/internal/errs"
	"github.com/kadai-ai/kadai/internal/safety"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Gate", func() {
	var gate *safety.Gate

	BeforeEach(func() {
		var err error
		gate, err = safety.New(nil, "")
		Expect(err).NotTo(HaveOccurred())
	})

	It("lets an unremarkable utterance through", func() {
		Expect(gate.Check("what's on my calendar today")).To(Succeed())
	})

	It("refuses a risky utterance without a confirmation token", func() {
		err := gate.Check("send delete")
		Expect(errors.Is(err, errs.Refused)).To(BeTrue())
	})

	It("lets a risky utterance through once it carries the confirmation token", func() {
		Expect(gate.Check("delete my draft, confirm")).To(Succeed())
	})

	It("is case-insensitive and matches whole risky verbs only", func() {
		Expect(gate.Check("SEND the invite")).NotTo(Succeed())
		Expect(gate.Check("sending the invite")).To(Succeed())
	})

	It("accepts a custom pattern list and confirm token at construction", func() {
		g, err := safety.New([]string{`\bformat\b`}, "yes-do-it")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Check("format the disk")).NotTo(Succeed())
		Expect(g.Check("format the disk, yes-do-it")).To(Succeed())
	})
})
