package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

const fullResume = `Jane Doe
jane.doe@example.com
+1 555-123-4567

Skills
Go, PostgreSQL, Docker, Kubernetes
Education
Bachelor of Technology in Computer Science, 2023
Experience
Developed and implemented a billing service; designed APIs and optimized queries, reduced latency by 30%
Projects
Built a CLI tool
Certifications
AWS Certified Developer
`

func TestParser_Parse_FullResume(t *testing.T) {
	t.Parallel()
	s := NewParser(nil).Parse(fullResume)

	assert.Equal(t, "Jane Doe", s[domain.SectionName])
	assert.Equal(t, "jane.doe@example.com", s[domain.SectionEmail])
	assert.Equal(t, "+1 555-123-4567", s[domain.SectionPhone])
	assert.Equal(t, "Go, PostgreSQL, Docker, Kubernetes", s[domain.SectionSkills])
	assert.Equal(t, "Bachelor of Technology in Computer Science, 2023", s[domain.SectionEducation])
	assert.Equal(t, "Built a CLI tool", s[domain.SectionProjects])
	assert.Equal(t, "AWS Certified Developer", s[domain.SectionCertifications])
}

func TestParser_Parse_NeverFails(t *testing.T) {
	t.Parallel()
	s := NewParser(nil).Parse("")
	require.Len(t, s, len(domain.SectionOrder))
	for _, sec := range domain.SectionOrder {
		assert.Equal(t, domain.SectionMissing, s[sec], sec)
	}
}

func TestParser_Parse_HeaderForms(t *testing.T) {
	t.Parallel()
	text := "Technical Skills:\nGo\nRust\nProjects and Publications\nCompiler\nWork Experience at Acme\nIntern"
	s := NewParser(nil).Parse(text)

	assert.Equal(t, "Go\nRust", s[domain.SectionSkills])
	assert.Equal(t, "Compiler", s[domain.SectionProjects])
	assert.Equal(t, "Intern", s[domain.SectionExperience])
	assert.Equal(t, domain.SectionMissing, s[domain.SectionEducation])
}

func TestParser_Parse_RepeatedHeaderRestarts(t *testing.T) {
	t.Parallel()
	text := "Skills\nJava\nSkills\nGo"
	s := NewParser(nil).Parse(text)
	assert.Equal(t, "Go", s[domain.SectionSkills])
}

func TestParser_Parse_HeaderWithoutContentStaysMissing(t *testing.T) {
	t.Parallel()
	s := NewParser(nil).Parse("John Smith\nCertifications\n")
	assert.Equal(t, domain.SectionMissing, s[domain.SectionCertifications])
}

func TestParser_Parse_LinesBeforeHeadersAreDropped(t *testing.T) {
	t.Parallel()
	s := NewParser(nil).Parse("Go Go Go\nsomething\nEducation\nBS 2021")
	assert.Equal(t, "BS 2021", s[domain.SectionEducation])
	assert.Equal(t, domain.SectionMissing, s[domain.SectionSkills])
}

func TestParser_Parse_NameSkipsEmailAndShortLines(t *testing.T) {
	t.Parallel()
	s := NewParser(nil).Parse("CV\nme@example.org\nAlex Morgan")
	assert.Equal(t, "Alex Morgan", s[domain.SectionName])
	assert.Equal(t, "me@example.org", s[domain.SectionEmail])
	assert.Equal(t, domain.SectionMissing, s[domain.SectionPhone])
}

func TestParser_CustomRules(t *testing.T) {
	t.Parallel()
	p := NewParser([]domain.SectionKeywords{
		{Section: domain.SectionSkills, Triggers: []string{" Toolbox "}},
	})
	s := p.Parse("Toolbox\nGo\nSkills\nJava")
	// "skills" is not a trigger here, so it is plain content.
	assert.Equal(t, "Go\nSkills\nJava", s[domain.SectionSkills])
}
