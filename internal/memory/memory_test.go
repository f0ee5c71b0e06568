package memory_test

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/kadai-ai/kadai/internal/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var (
		ctx     context.Context
		store   memory.Store
		counter int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		counter = 0
		store = memory.New(func() string {
			counter++
			return "mem-" + strconv.FormatInt(atomic.LoadInt64(&counter), 10)
		}, nil)
	})

	It("gives identical content two distinct ids (append-only semantics)", func() {
		id1, err := store.Add(ctx, memory.Item{Kind: memory.KindTaskResult, Text: "same text"})
		Expect(err).NotTo(HaveOccurred())
		id2, err := store.Add(ctx, memory.Item{Kind: memory.KindTaskResult, Text: "same text"})
		Expect(err).NotTo(HaveOccurred())
		Expect(id1).NotTo(Equal(id2))
	})

	It("degrades to substring match when no embedder is configured", func() {
		_, err := store.Add(ctx, memory.Item{Kind: memory.KindQAndA, Text: "the quick brown fox"})
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Add(ctx, memory.Item{Kind: memory.KindQAndA, Text: "a lazy dog"})
		Expect(err).NotTo(HaveOccurred())

		results, err := store.Search(ctx, "quick fox", nil, nil, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Text).To(Equal("the quick brown fox"))
	})

	It("returns NotFound for an unknown id", func() {
		_, err := store.Get(ctx, "nope")
		Expect(err).To(HaveOccurred())
	})

	It("filters search results by kind and tags", func() {
		_, _ = store.Add(ctx, memory.Item{Kind: memory.KindTODO, Text: "buy milk", Tags: map[string]struct{}{"home": {}}})
		_, _ = store.Add(ctx, memory.Item{Kind: memory.KindTODO, Text: "buy eggs", Tags: map[string]struct{}{"work": {}}})

		kind := memory.KindTODO
		results, err := store.Search(ctx, "buy", &kind, []string{"home"}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Text).To(Equal("buy milk"))
	})
})
