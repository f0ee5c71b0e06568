package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/internal/dispatcher"
	"github.com/kadai-ai/kadai/internal/graph"
	"github.com/kadai-ai/kadai/internal/httpapi"
	"github.com/kadai-ai/kadai/internal/memory"
	"github.com/kadai-ai/kadai/internal/safety"
	"github.com/kadai-ai/kadai/internal/skills"
	"github.com/kadai-ai/kadai/internal/thread"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeAgentClient struct{ response string }

func (c *fakeAgentClient) ChatWithTools(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
	return &llm.AgentResponse{Content: c.response}, nil
}
func (c *fakeAgentClient) Model() string { return "fake-text" }

var idCounter int

func nextID() string {
	idCounter++
	return string(rune('a' + idCounter))
}

var _ = Describe("httpapi", func() {
	var router *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()

		reg := skills.NewRegistry()
		reg.Register(skills.NewFreeFormSkill(&fakeAgentClient{response: "All set."}))
		gate, _ := safety.New(nil, "")
		d := dispatcher.New(reg, gate, nil, memory.New(nextID, nil), thread.New(nextID), graph.New(), nextID)

		httpapi.SetupRoutes(router, d, httpapi.Config{ServiceName: "kadai-test"})
	})

	It("reports healthy", func() {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("dispatches a valid request and returns a TaskResult", func() {
		body, _ := json.Marshal(map[string]string{"utterance": "hello there"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var result dispatcher.TaskResult
		Expect(json.Unmarshal(w.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Status).To(Equal(dispatcher.StatusOK))
	})

	It("rejects a request missing the utterance field", func() {
		body, _ := json.Marshal(map[string]string{})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("serves the eval log", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/evals", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})
