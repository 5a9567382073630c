package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// flexString accepts a string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar", n.Line)
	}
	*f = flexString(n.Value)
	return nil
}

// flexList accepts a single string or a list of strings.
type flexList []string

func (f *flexList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*f = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected string or list of strings, got %s", b)
	}
	*f = flexList{s}
	return nil
}

func (f *flexList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return err
		}
		*f = list
	case yaml.ScalarNode:
		*f = flexList{n.Value}
	default:
		return fmt.Errorf("line %d: expected string or list", n.Line)
	}
	return nil
}

type templatesRecord struct {
	Poor      flexList `json:"poor" yaml:"poor"`
	Average   flexList `json:"average" yaml:"average"`
	Excellent flexList `json:"excellent" yaml:"excellent"`
}

type questionRecord struct {
	ID                flexString         `json:"id" yaml:"id"`
	Question          string             `json:"question" yaml:"question"`
	QuestionType      string             `json:"question_type" yaml:"question_type"`
	Options           []string           `json:"options" yaml:"options"`
	CorrectAnswer     flexList           `json:"correct_answer" yaml:"correct_answer"`
	Marks             int                `json:"marks" yaml:"marks"`
	Difficulty        string             `json:"difficulty" yaml:"difficulty"`
	ExpectedKeywords  []string           `json:"expected_keywords" yaml:"expected_keywords"`
	Weightage         map[string]float64 `json:"weightage" yaml:"weightage"`
	FeedbackTemplates *templatesRecord   `json:"feedback_templates" yaml:"feedback_templates"`
	MinLength         int                `json:"min_length" yaml:"min_length"`
}

func (r questionRecord) toDomain(category string) domain.Question {
	q := domain.Question{
		ID:             string(r.ID),
		Prompt:         r.Question,
		Kind:           kindOf(r),
		Difficulty:     strings.ToLower(r.Difficulty),
		Category:       category,
		Options:        r.Options,
		CorrectAnswers: r.CorrectAnswer,
		Marks:          r.Marks,
		Keywords:       r.ExpectedKeywords,
		MinLength:      r.MinLength,
	}
	if len(r.Weightage) > 0 {
		q.Weights = make(map[string]float64, len(r.Weightage))
		for k, v := range r.Weightage {
			q.Weights[strings.ToLower(k)] = v
		}
	}
	if t := r.FeedbackTemplates; t != nil {
		q.Templates = &domain.FeedbackTemplates{Poor: t.Poor, Average: t.Average, Excellent: t.Excellent}
	}
	return q
}

func kindOf(r questionRecord) domain.QuestionKind {
	switch strings.ToLower(strings.TrimSpace(r.QuestionType)) {
	case "single", "single-choice", "mcq":
		return domain.KindSingle
	case "multi", "multiple", "multi-choice":
		return domain.KindMulti
	case "open", "open-ended", "descriptive":
		return domain.KindOpen
	}
	if len(r.Options) > 0 {
		return domain.KindSingle
	}
	return domain.KindOpen
}

type roleGroupRecord struct {
	Role      string           `json:"role" yaml:"role"`
	Questions []questionRecord `json:"questions" yaml:"questions"`
}

type categoryGroupRecord struct {
	Category  string           `json:"category" yaml:"category"`
	Questions []questionRecord `json:"questions" yaml:"questions"`
}

type taskRecord struct {
	ID                flexString `json:"id" yaml:"id"`
	Type              string     `json:"type" yaml:"type"`
	Prompt            string     `json:"prompt" yaml:"prompt"`
	MinDuration       float64    `json:"minDuration" yaml:"minDuration"`
	StructurePoints   []string   `json:"structurePoints" yaml:"structurePoints"`
	FeedbackTemplates struct {
		High string `json:"high" yaml:"high"`
		Mid  string `json:"mid" yaml:"mid"`
		Low  string `json:"low" yaml:"low"`
	} `json:"feedbackTemplates" yaml:"feedbackTemplates"`
	StrongResponse string `json:"strongResponse" yaml:"strongResponse"`
}

func (r taskRecord) toDomain() domain.CommunicationTask {
	return domain.CommunicationTask{
		ID:              string(r.ID),
		Type:            r.Type,
		Prompt:          r.Prompt,
		MinDuration:     r.MinDuration,
		StructurePoints: r.StructurePoints,
		FeedbackTemplates: domain.CommunicationFeedback{
			High: r.FeedbackTemplates.High,
			Mid:  r.FeedbackTemplates.Mid,
			Low:  r.FeedbackTemplates.Low,
		},
		StrongResponse: r.StrongResponse,
	}
}

type atsRecord struct {
	Roles []struct {
		Name           string   `json:"name" yaml:"name"`
		RequiredSkills []string `json:"requiredSkills" yaml:"requiredSkills"`
	} `json:"roles" yaml:"roles"`
	SectionKeywords orderedSections `json:"sectionKeywords" yaml:"sectionKeywords"`
}

// orderedSections keeps the file order of the sectionKeywords object, which
// decides which rule wins when a header matches more than one.
type orderedSections []domain.SectionKeywords

func (o *orderedSections) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("sectionKeywords: expected object")
	}
	var out orderedSections
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var triggers []string
		if err := dec.Decode(&triggers); err != nil {
			return fmt.Errorf("sectionKeywords.%s: %w", key, err)
		}
		out = append(out, domain.SectionKeywords{Section: domain.Section(key), Triggers: triggers})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

func (o *orderedSections) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: sectionKeywords: expected mapping", n.Line)
	}
	out := make(orderedSections, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var triggers []string
		if err := n.Content[i+1].Decode(&triggers); err != nil {
			return fmt.Errorf("sectionKeywords.%s: %w", n.Content[i].Value, err)
		}
		out = append(out, domain.SectionKeywords{Section: domain.Section(n.Content[i].Value), Triggers: triggers})
	}
	*o = out
	return nil
}
