// Package dataset loads the read-only question banks, communication tasks
// and ATS tables from a directory of JSON or YAML files.
//
// Layout under the dataset directory:
//
//	technical.{json,yaml}       [{role, questions}]
//	hr.{json,yaml}              [{category, questions}]
//	communications.{json,yaml}  [task]
//	ats_keywords.{json,yaml}    {roles, sectionKeywords}
//	technical-tests/<subject>/<difficulty>.{json,yaml}
//
// Missing files leave the corresponding bank empty. Test pools are read on
// first use and kept for the life of the Store.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

const testsDir = "technical-tests"

var extensions = []string{".json", ".yaml", ".yml"}

type group struct {
	name      string
	questions []domain.Question
}

// Store implements domain.QuestionBank, domain.TestBank, domain.TaskCatalog
// and domain.ResumeRules.
type Store struct {
	dir string

	technical []group
	hr        []group
	byID      map[string]domain.Question
	tasks     []domain.CommunicationTask
	roles     []domain.ATSRole
	sections  []domain.SectionKeywords
	subjects  []string

	mu    sync.RWMutex
	pools map[string][]domain.Question
}

var (
	_ domain.QuestionBank = (*Store)(nil)
	_ domain.TestBank     = (*Store)(nil)
	_ domain.TaskCatalog  = (*Store)(nil)
	_ domain.ResumeRules  = (*Store)(nil)
)

// Load reads every bank under dir. A malformed file is an error; an absent
// one is logged and skipped.
func Load(dir string) (*Store, error) {
	s := &Store{dir: dir, byID: map[string]domain.Question{}, pools: map[string][]domain.Question{}}

	var technical []roleGroupRecord
	if err := s.readOptional("technical", &technical); err != nil {
		return nil, err
	}
	for _, g := range technical {
		s.technical = append(s.technical, s.group(g.Role, g.Questions))
	}

	var hr []categoryGroupRecord
	if err := s.readOptional("hr", &hr); err != nil {
		return nil, err
	}
	for _, g := range hr {
		s.hr = append(s.hr, s.group(g.Category, g.Questions))
	}

	var tasks []taskRecord
	if err := s.readOptional("communications", &tasks); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		s.tasks = append(s.tasks, t.toDomain())
	}

	var ats atsRecord
	if err := s.readOptional("ats_keywords", &ats); err != nil {
		return nil, err
	}
	for _, r := range ats.Roles {
		s.roles = append(s.roles, domain.ATSRole{Name: r.Name, RequiredSkills: r.RequiredSkills})
	}
	for _, sk := range ats.SectionKeywords {
		if sk.Section.IsContact() || !known(sk.Section) {
			return nil, fmt.Errorf("op=dataset.Load: ats_keywords: unknown section %q", sk.Section)
		}
	}
	s.sections = ats.SectionKeywords

	entries, err := os.ReadDir(filepath.Join(dir, testsDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("op=dataset.Load: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			s.subjects = append(s.subjects, strings.ToLower(e.Name()))
		}
	}
	sort.Strings(s.subjects)

	slog.Info("datasets loaded",
		slog.String("dir", dir),
		slog.Int("technical_roles", len(s.technical)),
		slog.Int("hr_categories", len(s.hr)),
		slog.Int("communication_tasks", len(s.tasks)),
		slog.Int("ats_roles", len(s.roles)),
		slog.Int("test_subjects", len(s.subjects)))
	return s, nil
}

func (s *Store) group(name string, recs []questionRecord) group {
	g := group{name: name, questions: make([]domain.Question, 0, len(recs))}
	for _, r := range recs {
		q := r.toDomain(name)
		g.questions = append(g.questions, q)
		if _, dup := s.byID[q.ID]; !dup {
			s.byID[q.ID] = q
		}
	}
	return g
}

// TechnicalQuestions returns the first role group whose name contains role,
// or every technical question when none does.
func (s *Store) TechnicalQuestions(role string) []domain.Question { return lookup(s.technical, role) }

// HRQuestions returns the first category group whose name contains category,
// or every HR question when none does.
func (s *Store) HRQuestions(category string) []domain.Question { return lookup(s.hr, category) }

// Question finds a question by id across the technical and HR banks.
func (s *Store) Question(id string) (domain.Question, bool) {
	q, ok := s.byID[id]
	return q, ok
}

// Tasks returns every communication task in file order.
func (s *Store) Tasks() []domain.CommunicationTask {
	return append([]domain.CommunicationTask(nil), s.tasks...)
}

// Task looks a communication task up by id.
func (s *Store) Task(id string) (domain.CommunicationTask, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.CommunicationTask{}, false
}

// Roles returns the ATS role table.
func (s *Store) Roles() []domain.ATSRole { return append([]domain.ATSRole(nil), s.roles...) }

// Role looks a role up by exact name, then case-insensitively.
func (s *Store) Role(name string) (domain.ATSRole, bool) {
	for _, r := range s.roles {
		if r.Name == name {
			return r, true
		}
	}
	for _, r := range s.roles {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return r, true
		}
	}
	return domain.ATSRole{}, false
}

// SectionKeywords returns the header rules in file order, or nil when the
// dataset has none.
func (s *Store) SectionKeywords() []domain.SectionKeywords {
	return append([]domain.SectionKeywords(nil), s.sections...)
}

// Subjects lists the subject directories under technical-tests.
func (s *Store) Subjects() []string { return append([]string(nil), s.subjects...) }

// TestQuestions returns the full pool for subject and difficulty. An unknown
// combination yields an empty pool; a path-like name is ErrInvalidArgument.
func (s *Store) TestQuestions(ctx domain.Context, subject, difficulty string) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subject, difficulty = strings.ToLower(strings.TrimSpace(subject)), strings.ToLower(strings.TrimSpace(difficulty))
	if !safeName(subject) || !safeName(difficulty) {
		return nil, fmt.Errorf("%w: invalid subject or difficulty", domain.ErrInvalidArgument)
	}
	key := subject + "/" + difficulty

	s.mu.RLock()
	pool, ok := s.pools[key]
	s.mu.RUnlock()
	if ok {
		return append([]domain.Question(nil), pool...), nil
	}

	var recs []questionRecord
	if err := s.readOptional(filepath.Join(testsDir, subject, difficulty), &recs); err != nil {
		return nil, err
	}
	pool = make([]domain.Question, 0, len(recs))
	for _, r := range recs {
		q := r.toDomain(subject)
		if q.Difficulty == "" {
			q.Difficulty = difficulty
		}
		pool = append(pool, q)
	}

	s.mu.Lock()
	if cached, ok := s.pools[key]; ok {
		pool = cached
	} else {
		s.pools[key] = pool
	}
	s.mu.Unlock()
	return append([]domain.Question(nil), pool...), nil
}

// readOptional decodes base plus the first extension that exists.
func (s *Store) readOptional(base string, out any) error {
	for _, ext := range extensions {
		path := filepath.Join(s.dir, base+ext)
		b, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("op=dataset.read: %w", err)
		}
		if ext == ".json" {
			err = json.Unmarshal(b, out)
		} else {
			err = yaml.Unmarshal(b, out)
		}
		if err != nil {
			return fmt.Errorf("op=dataset.read: %s: %w", path, err)
		}
		return nil
	}
	slog.Debug("dataset file not found", slog.String("dir", s.dir), slog.String("name", base))
	return nil
}

func lookup(groups []group, name string) []domain.Question {
	needle := strings.ToLower(name)
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.name), needle) {
			return append([]domain.Question(nil), g.questions...)
		}
	}
	var all []domain.Question
	for _, g := range groups {
		all = append(all, g.questions...)
	}
	return all
}

func known(sec domain.Section) bool {
	for _, s := range domain.SectionOrder {
		if s == sec {
			return true
		}
	}
	return false
}

func safeName(s string) bool {
	return s != "" && !strings.ContainsAny(s, `/\`) && !strings.Contains(s, "..")
}
