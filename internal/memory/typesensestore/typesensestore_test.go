package typesensestore

import (
	"testing"
	"time"

	"github.com/kadai-ai/kadai/internal/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTypesensestore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "typesensestore")
}

// These cover only the document<->Item mapping, since everything else in
// this package needs a live Typesense server to exercise (see DESIGN.md:
// no vendored client or network access to verify the wire shape against).
var _ = Describe("document mapping", func() {
	It("round-trips an Item through toDocument/fromDocument", func() {
		now := time.Now().Truncate(time.Millisecond)
		item := memory.Item{
			ID:         "abc123",
			Kind:       memory.KindTaskResult,
			Text:       "booked the dentist",
			Tags:       map[string]struct{}{"calendar": {}},
			CreatedAt:  now,
			Confidence: 0.8,
		}

		doc := toDocument(item)
		Expect(doc.ID).To(Equal("abc123"))
		Expect(doc.Kind).To(Equal(string(memory.KindTaskResult)))
		Expect(doc.Tags).To(ConsistOf("calendar"))
		Expect(doc.CreatedAt).To(Equal(now.UnixMilli()))

		raw := map[string]any{
			"id":         doc.ID,
			"kind":       doc.Kind,
			"text":       doc.Text,
			"tags":       []interface{}{"calendar"},
			"created_at": float64(doc.CreatedAt),
			"confidence": doc.Confidence,
		}
		back := fromDocument(raw)
		Expect(back.ID).To(Equal(item.ID))
		Expect(back.Kind).To(Equal(item.Kind))
		Expect(back.Text).To(Equal(item.Text))
		Expect(back.Tags).To(HaveKey("calendar"))
		Expect(back.CreatedAt.UnixMilli()).To(Equal(now.UnixMilli()))
		Expect(back.Confidence).To(Equal(item.Confidence))
	})

	It("defaults an empty tag set rather than a nil map", func() {
		back := fromDocument(map[string]any{"id": "x"})
		Expect(back.Tags).NotTo(BeNil())
		Expect(back.Tags).To(BeEmpty())
	})
})
