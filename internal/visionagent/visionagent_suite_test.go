package visionagent_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestVisionAgent(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "visionagent suite")
}
