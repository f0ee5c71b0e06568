package arangostore

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestArangostore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "arangostore")
}

// Everything else in this package needs a live ArangoDB instance to
// exercise; these cover only the deterministic key derivation the rest of
// the store's AQL queries depend on.
var _ = Describe("key derivation", func() {
	It("is deterministic for the same entity id", func() {
		Expect(makeKey("thread:abc")).To(Equal(makeKey("thread:abc")))
	})

	It("differs between distinct entity ids", func() {
		Expect(makeKey("thread:abc")).NotTo(Equal(makeKey("thread:def")))
	})

	It("derives distinct edge keys from src/dst/label", func() {
		a := makeEdgeKey("thread:abc", "entry:abc:0", "has_entry")
		b := makeEdgeKey("thread:abc", "entry:abc:0", "references")
		Expect(a).NotTo(Equal(b))
	})

	It("produces a 16-character hex key", func() {
		key := makeKey("thread:abc")
		Expect(key).To(HaveLen(16))
		Expect(key).To(MatchRegexp("^[0-9a-f]{16}$"))
	})
})

var _ = Describe("Config.validate", func() {
	It("requires a URL, username, and database", func() {
		Expect(Config{}.validate()).To(HaveOccurred())
		Expect(Config{URL: "http://localhost:8529", Username: "root", Database: "kadai"}.validate()).NotTo(HaveOccurred())
		Expect(Config{Username: "root", Database: "kadai"}.validate()).To(HaveOccurred())
	})
})
