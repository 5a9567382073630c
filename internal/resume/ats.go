package resume

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

const (
	baseScore     = 10
	minScore      = 20
	maxScore      = 95
	skillsWeight  = 40
	skillsPassPct = 60
)

var (
	degreeKeywords = []string{"btech", "mtech", "b.e.", "m.e.", "bs", "ms", "bachelor", "master", "phd"}
	actionVerbs    = []string{"developed", "implemented", "managed", "led", "designed", "optimized", "collaborated", "built"}
	yearRe         = regexp.MustCompile(`\b(20\d{2})\b`)
	outcomeRe      = regexp.MustCompile(`%|reduced|increased|improved|saved|efficient`)
)

// Scorer evaluates parsed sections against the role table.
type Scorer struct {
	rules domain.ResumeRules
}

// NewScorer constructs a Scorer.
func NewScorer(rules domain.ResumeRules) *Scorer { return &Scorer{rules: rules} }

type scoreCard struct {
	structure, education, experience int
	skills                           float64
	rows                             []domain.ATSFeedbackRow
}

func (c *scoreCard) add(section, errText, correction, impact string, gain int) {
	c.rows = append(c.rows, domain.ATSFeedbackRow{
		Section:            section,
		Error:              errText,
		Correction:         correction,
		Impact:             impact,
		PotentialScoreGain: gain,
	})
}

// Score returns ErrInvalidArgument for an unknown role; every other input
// yields a report.
func (s *Scorer) Score(sections domain.ResumeSections, targetRole string) (domain.ATSReport, error) {
	role, ok := s.rules.Role(targetRole)
	if !ok {
		return domain.ATSReport{}, fmt.Errorf("%w: invalid target role selected: %q", domain.ErrInvalidArgument, targetRole)
	}
	if sections == nil {
		sections = domain.NewResumeSections()
	}

	card := &scoreCard{}
	checkStructure(card, sections)
	checkEducation(card, sections, role.Name)
	stats := checkSkills(card, sections, role)
	checkExperience(card, sections)
	checkCertifications(card, sections, role.Name)

	total := int(math.Round(float64(card.structure+card.education+card.experience) + card.skills + baseScore))
	if total < minScore {
		total = minScore
	}
	if total > maxScore {
		total = maxScore
	}
	gain := 0
	for _, r := range card.rows {
		gain += r.PotentialScoreGain
	}
	achievable := total + (gain*7+5)/10
	if achievable > maxScore {
		achievable = maxScore
	}

	return domain.ATSReport{
		Score:           total,
		Rows:            card.rows,
		MatchStats:      stats,
		AchievableScore: achievable,
		Summary: fmt.Sprintf("Fixing the high-impact issues above could improve your ATS score from %d to approximately %d–%d.",
			total, total+10, achievable),
	}, nil
}

func checkStructure(c *scoreCard, sections domain.ResumeSections) {
	var missing []domain.Section
	for _, sec := range domain.SectionOrder {
		if !sec.IsContact() && !sections.Has(sec) {
			missing = append(missing, sec)
		}
	}
	if len(missing) > 0 {
		m := missing[0]
		c.add("Structure",
			fmt.Sprintf("❌ Missing Section: %s\nNo %s section detected. ATS systems rely on standard headers to categorize your profile.", m, m),
			fmt.Sprintf("✅ Add a %s section:\nUse a clear, standard header like %q.\n\nExample:\n## %s\n• Add 2-3 relevant items here to demonstrate domain exposure.", m, string(m), m),
			domain.ImpactHigh, 10)
		return
	}
	c.add("Structure",
		"Resume structure is ATS-compatible but lacks optimization for readability.",
		"✅ Optimization Suggestion:\nEnsure your most relevant section (Experience or Skills) appears in the top 30% of the page to catch recruiter attention within 6 seconds.",
		domain.ImpactLow, 2)
	c.structure = 10
}

func checkEducation(c *scoreCard, sections domain.ResumeSections, roleName string) {
	if !sections.Has(domain.SectionEducation) {
		c.add("Education",
			"❌ Missing Education Section:\nNo academic history found. This is a mandatory filter for 90% of engineering roles.",
			"✅ Addition Required:\nList your highest degree, institution name, and graduation year.\n\nExample:\nBS in Computer Science, 2023\nABC State University",
			domain.ImpactHigh, 15)
		return
	}
	edu := strings.ToLower(sections[domain.SectionEducation])
	hasDegree := containsAny(edu, degreeKeywords)
	hasYear := yearRe.MatchString(edu)
	if !hasDegree || !hasYear {
		what := "Graduation year"
		if !hasDegree {
			what = "Degree title"
		}
		c.add("Education",
			fmt.Sprintf("❌ Incomplete Credentials:\n%s not clearly detected. ATS needs specific credentials to verify eligibility for %s roles.", what, roleName),
			"✅ Formatting Guidance:\nExplicitly list your degree type and year.\n\nExample:\nBachelor of Technology (Computer Science), 2024\nXYZ University",
			domain.ImpactMedium, 5)
		c.education = 5
		return
	}
	c.add("Education",
		"Education credentials are valid but can be fine-tuned for specialized roles.",
		"✅ Fine-tuning:\nIf applicable, add relevant coursework or GPA (if > 3.5) to boost entry-level rankings for competitive roles.",
		domain.ImpactLow, 2)
	c.education = 15
}

func checkSkills(c *scoreCard, sections domain.ResumeSections, role domain.ATSRole) domain.MatchStats {
	text := normalizedText(sections)
	found := []string{}
	missing := []string{}
	for _, sk := range role.RequiredSkills {
		if strings.Contains(text, strings.ToLower(sk)) {
			found = append(found, sk)
		} else {
			missing = append(missing, sk)
		}
	}
	// A role without required skills cannot miss any.
	ratio := 1.0
	if n := len(role.RequiredSkills); n > 0 {
		ratio = float64(len(found)) / float64(n)
	}
	pct := int(math.Round(ratio * 100))

	if pct < skillsPassPct {
		top := strings.Join(missing[:min(3, len(missing))], ", ")
		c.add("Skills",
			fmt.Sprintf("❌ Low Keyword Match (%d%%):\nMajor tools for %s are missing: %s. This reduces ATS relevance.", pct, role.Name, top),
			fmt.Sprintf("✅ Improve Keyword Density:\nAdd missing tools naturally. Avoid \"keyword stuffing\" lists; integrate them into projects.\n\nExample:\nSkills: %s, Java, React.", top),
			domain.ImpactHigh, 20)
	} else {
		c.add("Skills",
			"Skills section has good coverage but lacks categorization.",
			"✅ Optimization:\nGroup skills by category (e.g., Languages: ..., Frameworks: ...) for better machine and human readability.",
			domain.ImpactLow, 5)
	}
	c.skills = ratio * skillsWeight
	return domain.MatchStats{Found: found, Missing: missing, Pct: pct}
}

func checkExperience(c *scoreCard, sections domain.ResumeSections) {
	if !sections.Has(domain.SectionExperience) && !sections.Has(domain.SectionProjects) {
		c.add("Experience",
			"❌ No Professional Evidence:\nNeither work experience nor projects were detected. This prevents ATS from evaluating practical skills.",
			"✅ Immediate Fix:\nAdd a 'Projects' section if you lack work history. Describe what you built and the tools used.\n\nExample:\nProject: Portfolio Site\nTools: React, TailwindCSS\nOutcome: Optimized page speed by 40%.",
			domain.ImpactHigh, 25)
		return
	}
	text := strings.ToLower(sectionText(sections, domain.SectionExperience) + " " + sectionText(sections, domain.SectionProjects))
	hasOutcomes := outcomeRe.MatchString(text)
	verbs := 0
	for _, v := range actionVerbs {
		if strings.Contains(text, v) {
			verbs++
		}
	}
	if !hasOutcomes || verbs < 3 {
		var parts []string
		if !hasOutcomes {
			parts = append(parts, "No measurable outcomes (%, numbers) found.")
		}
		if verbs < 3 {
			parts = append(parts, "Passive language detected.")
		}
		c.add("Experience",
			fmt.Sprintf("❌ Weak Actionability:\n%s Recruiters value impact.", strings.Join(parts, " ")),
			"✅ Quantify Impact:\nUse strong verbs and add numbers to your bullets.\n\nExample:\n❌ Helped with API.\n✅ Optimized API response time by 30% using Redis caching.",
			domain.ImpactMedium, 10)
		c.experience = 10
		return
	}
	c.add("Experience",
		"Experience descriptions are strong but can be polished with STAR method.",
		"✅ Enhancement:\nUse the STAR (Situation, Task, Action, Result) method for even better impact descriptions in your bullets.",
		domain.ImpactLow, 5)
	c.experience = 25
}

func checkCertifications(c *scoreCard, sections domain.ResumeSections, roleName string) {
	if !sections.Has(domain.SectionCertifications) {
		c.add("Certifications",
			fmt.Sprintf("❌ No Certifications Found:\nCertifications help validate specialized skills (AWS, Azure, Coursera) for %s roles.", roleName),
			"✅ Add relevant certs:\nIf you have completed any online specializations, list them clearly with the issuing body and year.",
			domain.ImpactLow, 5)
		return
	}
	c.add("Certifications",
		"Certifications are detected but issuer visibility could be improved.",
		"✅ Check:\nEnsure the certificate name and issuer are explicitly stated without unusual symbols or abbreviations.",
		domain.ImpactLow, 2)
}

func normalizedText(sections domain.ResumeSections) string {
	parts := make([]string, 0, len(domain.SectionOrder))
	for _, sec := range domain.SectionOrder {
		if sections.Has(sec) {
			parts = append(parts, sections[sec])
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func sectionText(sections domain.ResumeSections, s domain.Section) string {
	if sections.Has(s) {
		return sections[s]
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, x := range subs {
		if strings.Contains(s, x) {
			return true
		}
	}
	return false
}
