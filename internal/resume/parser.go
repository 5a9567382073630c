// Package resume splits extracted resume text into sections and scores it
// against a target role the way an applicant tracking system would.
package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

const contactScanLines = 20

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// DefaultSectionKeywords are used when the dataset carries no header table.
var DefaultSectionKeywords = []domain.SectionKeywords{
	{Section: domain.SectionSkills, Triggers: []string{"skills", "technical skills", "core competencies", "technologies"}},
	{Section: domain.SectionEducation, Triggers: []string{"education", "academic background", "academics", "qualifications"}},
	{Section: domain.SectionExperience, Triggers: []string{"experience", "work experience", "professional experience", "employment", "internships", "internship"}},
	{Section: domain.SectionProjects, Triggers: []string{"projects", "personal projects", "academic projects"}},
	{Section: domain.SectionCertifications, Triggers: []string{"certifications", "certificates", "licenses", "courses"}},
}

// Parser is safe for concurrent use.
type Parser struct {
	rules []domain.SectionKeywords
}

// NewParser builds a parser over ordered header rules; nil uses the defaults.
func NewParser(rules []domain.SectionKeywords) *Parser {
	if len(rules) == 0 {
		rules = DefaultSectionKeywords
	}
	norm := make([]domain.SectionKeywords, 0, len(rules))
	for _, r := range rules {
		triggers := make([]string, 0, len(r.Triggers))
		for _, t := range r.Triggers {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				triggers = append(triggers, t)
			}
		}
		norm = append(norm, domain.SectionKeywords{Section: r.Section, Triggers: triggers})
	}
	return &Parser{rules: norm}
}

// Parse never fails; sections it cannot find stay domain.SectionMissing.
func (p *Parser) Parse(text string) domain.ResumeSections {
	sections := domain.NewResumeSections()

	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	for i := 0; i < len(lines) && i < contactScanLines; i++ {
		line := lines[i]
		if !sections.Has(domain.SectionEmail) {
			if m := emailRe.FindString(line); m != "" {
				sections[domain.SectionEmail] = m
			}
		}
		if !sections.Has(domain.SectionPhone) {
			if m := phoneRe.FindString(line); m != "" {
				sections[domain.SectionPhone] = m
			}
		}
		if !sections.Has(domain.SectionName) {
			if n := utf8.RuneCountInString(line); n > 3 && n < 40 && !strings.Contains(line, "@") {
				sections[domain.SectionName] = line
			}
		}
	}

	var current domain.Section
	content := map[domain.Section][]string{}
	for _, line := range lines {
		if s, ok := p.header(strings.ToLower(line)); ok {
			current = s
			content[s] = nil
			continue
		}
		if current != "" {
			content[current] = append(content[current], line)
		}
	}
	for s, ls := range content {
		if len(ls) > 0 {
			sections[s] = strings.Join(ls, "\n")
		}
	}
	return sections
}

func (p *Parser) header(lower string) (domain.Section, bool) {
	for _, r := range p.rules {
		for _, t := range r.Triggers {
			if lower == t || lower == t+":" || strings.HasPrefix(lower, t+" ") {
				return r.Section, true
			}
		}
	}
	return "", false
}
