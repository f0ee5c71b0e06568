package graph_test

import (
	"context"

	"github.com/kadai-ai/kadai/internal/graph"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Graph", func() {
	var (
		ctx context.Context
		g   graph.Graph
	)

	BeforeEach(func() {
		ctx = context.Background()
		g = graph.New()
		Expect(g.UpsertEntity(ctx, "a", "repo", nil)).To(Succeed())
		Expect(g.UpsertEntity(ctx, "b", "person", nil)).To(Succeed())
		Expect(g.UpsertEntity(ctx, "c", "person", nil)).To(Succeed())
		Expect(g.AddEdge(ctx, "a", "b", "maintained_by", nil)).To(Succeed())
		Expect(g.AddEdge(ctx, "b", "c", "knows", nil)).To(Succeed())
	})

	It("related(id, 0) == {id}", func() {
		related, err := g.Related(ctx, "a", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(related).To(HaveLen(1))
		Expect(related[0].ID).To(Equal("a"))
	})

	It("is monotonic non-decreasing in depth", func() {
		r1, _ := g.Related(ctx, "a", 1)
		r2, _ := g.Related(ctx, "a", 2)
		Expect(len(r2)).To(BeNumerically(">=", len(r1)))

		ids1 := map[string]bool{}
		for _, e := range r1 {
			ids1[e.ID] = true
		}
		for id := range ids1 {
			found := false
			for _, e := range r2 {
				if e.ID == id {
					found = true
				}
			}
			Expect(found).To(BeTrue())
		}
	})

	It("tolerates cycles via a visited set", func() {
		Expect(g.AddEdge(ctx, "c", "a", "cites", nil)).To(Succeed())
		related, err := g.Related(ctx, "a", 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(related).To(HaveLen(3))
	})
})
