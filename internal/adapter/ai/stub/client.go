// Package stub is a deterministic domain.ContentGenerator for local runs
// without a Gemini API key.
package stub

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// Client answers every quick-test prompt with a canned question derived from
// the prompt text, so the same prompt always yields the same question.
type Client struct{}

func New() *Client { return &Client{} }

var _ domain.ContentGenerator = (*Client)(nil)

var canned = []domain.GeneratedQuestion{
	{
		Question:      "Which practice keeps a function easiest to test?",
		Options:       []string{"Relying on global state", "Injecting its dependencies", "Reading the clock directly", "Printing instead of returning"},
		CorrectAnswer: "Injecting its dependencies",
		Explanation:   "Injected dependencies can be replaced by fakes in tests.",
	},
	{
		Question:      "What does a version control branch let you do?",
		Options:       []string{"Delete history", "Work on changes in isolation", "Compile faster", "Encrypt the repository"},
		CorrectAnswer: "Work on changes in isolation",
		Explanation:   "Branches isolate work until it is merged.",
	},
	{
		Question:      "Which data structure gives average O(1) lookup by key?",
		Options:       []string{"Linked list", "Hash map", "Binary heap", "Stack"},
		CorrectAnswer: "Hash map",
		Explanation:   "Hash maps index entries by the hash of their key.",
	},
	{
		Question:      "What is the main purpose of a code review?",
		Options:       []string{"Assigning blame", "Catching defects and sharing knowledge", "Measuring typing speed", "Replacing tests"},
		CorrectAnswer: "Catching defects and sharing knowledge",
		Explanation:   "Reviews find problems early and spread context across the team.",
	},
}

// GenerateJSON fills out with a canned question for the quick-test schema.
func (c *Client) GenerateJSON(_ domain.Context, prompt, schemaName string, out any) error {
	if schemaName != domain.SchemaQuickTestQuestion {
		return fmt.Errorf("%w: unknown schema %q", domain.ErrInvalidArgument, schemaName)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.TrimSpace(prompt)))
	q := canned[int(h.Sum32()%uint32(len(canned)))]

	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("op=stub.generate: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("op=stub.generate: %w: %v", domain.ErrSchemaInvalid, err)
	}
	return nil
}
