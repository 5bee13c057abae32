/*
Copyright (c) 2026 testudo-ai
SPDX-License-Identifier: MIT
*/

package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/testudo-ai/Testudo/internal/agent"
	"github.com/testudo-ai/Testudo/internal/classify"
	"github.com/testudo-ai/Testudo/internal/embedding"
	"github.com/testudo-ai/Testudo/internal/server"
	"github.com/testudo-ai/Testudo/internal/session"
	"github.com/testudo-ai/Testudo/internal/store"
)

type echoScraper struct{ content string }

func (s *echoScraper) Enabled() bool { return true }
func (s *echoScraper) Scrape(context.Context, string) (string, error) {
	return s.content, nil
}

type cannedCompleter struct{ out string }

func (c *cannedCompleter) Complete(context.Context, string, string) (string, error) {
	return c.out, nil
}

var _ = Describe("web testing workflow", Ordered, func() {
	var (
		ctx      context.Context
		mem      *store.Memory
		recorder *session.Recorder
		pipeline *agent.Pipeline
	)

	BeforeAll(func() {
		ctx = context.Background()
		mem = store.NewMemory()
		recorder = session.NewRecorder(mem, embedding.NewFake(), nil, "gpt-4o", zerolog.Nop())
		scraper := &echoScraper{
			content: "**Login Page**\nhttps://shop.test/login\n\nUsername and password fields with a submit button.",
		}
		completer := &cannedCompleter{
			out: "Functional Requirements:\n- users can login with valid credentials\n- form validates empty input\n- error message shown on failure",
		}
		pipeline = agent.NewPipeline(recorder, scraper, completer, zerolog.Nop())
	})

	Context("first run", func() {
		It("completes the workflow and persists every step", func() {
			var events []agent.StepEvent
			err := pipeline.Run(ctx, "test the login page at https://shop.test/login", "gherkin", func(e agent.StepEvent) {
				events = append(events, e)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(events).NotTo(BeEmpty())

			By("recording a completed run")
			runs, err := mem.RecentRuns(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].Status).To(Equal(store.RunStatusCompleted))
			Expect(runs[0].URL).To(Equal("https://shop.test/login"))

			By("persisting artifacts for each workflow step")
			Expect(mem.ArtifactCount()).To(BeNumerically(">=", 5))

			By("emitting generated gherkin in the stream")
			var joined strings.Builder
			for _, e := range events {
				joined.WriteString(e.Content)
				joined.WriteString("\n")
			}
			Expect(joined.String()).To(ContainSubstring("Scenario: users can login with valid credentials"))
		})
	})

	Context("experience retrieval", func() {
		It("finds past artifacts by semantic similarity and classifies them", func() {
			results := recorder.SearchExperience(ctx, "login credentials validates input", 5)
			Expect(results).NotTo(BeEmpty())

			buckets := classify.Partition(results, classify.ArtifactThreshold)
			total := len(buckets.Requirements) + len(buckets.TestCode) + len(buckets.Other)
			Expect(total).To(BeNumerically(">", 0))

			By("placing the requirements list in the requirements bucket")
			var reqSummaries []string
			for _, r := range buckets.Requirements {
				reqSummaries = append(reqSummaries, r.Text)
			}
			Expect(strings.Join(reqSummaries, "\n")).To(ContainSubstring("Functional Requirements:"))
		})

		It("keeps artifact ids stable across identical re-saves", func() {
			before := mem.ArtifactCount()
			runs, err := mem.RecentRuns(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			runID := runs[0].ID

			ok, _ := recorder.SaveArtifact(ctx, runID, store.TypeToolResult, "repeated content", "https://shop.test/login", "", "")
			Expect(ok).To(BeTrue())
			ok, _ = recorder.SaveArtifact(ctx, runID, store.TypeToolResult, "repeated content", "https://shop.test/login", "", "")
			Expect(ok).To(BeTrue())

			Expect(mem.ArtifactCount()).To(Equal(before + 1))
		})
	})

	Context("HTTP surface", func() {
		var ts *httptest.Server

		BeforeAll(func() {
			api := server.New(pipeline, recorder, nil, server.NewRateLimiter(0), zerolog.Nop())
			ts = httptest.NewServer(api.Routes())
			DeferCleanup(ts.Close)
		})

		It("streams a chat workflow as SSE", func() {
			resp, err := http.Post(ts.URL+"/api/v1/chat", "application/json",
				strings.NewReader(`{"query": "test the signup flow at https://shop.test/signup", "format": "js"}`))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("data: "))
			Expect(strings.TrimSpace(string(body))).To(HaveSuffix("data: [DONE]"))
		})

		It("lists runs for both workflows", func() {
			resp, err := http.Get(ts.URL + "/api/v1/runs?limit=10")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			var views []server.RunView
			Expect(json.NewDecoder(resp.Body).Decode(&views)).To(Succeed())
			Expect(len(views)).To(BeNumerically(">=", 2))
			Expect(views[0].StartedAt.After(views[len(views)-1].StartedAt) ||
				views[0].StartedAt.Equal(views[len(views)-1].StartedAt)).To(BeTrue())
		})

		It("serves classified search results", func() {
			resp, err := http.Get(ts.URL + "/api/v1/search?q=login+form+requirements")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			var sr server.SearchResponse
			Expect(json.NewDecoder(resp.Body).Decode(&sr)).To(Succeed())
			total := len(sr.Requirements) + len(sr.TestCode) + len(sr.Other)
			Expect(total).To(BeNumerically(">", 0))
		})
	})
})
