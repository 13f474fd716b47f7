// Package categorizer scores emails against category rules and picks the
// best match.
package categorizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"business-admin/internal/model"
)

// Rule weights.
const (
	SubjectKeywordWeight = 3
	BodyKeywordWeight    = 1
	PatternWeight        = 2
	DomainWeight         = 5

	// A score of fullScore or more maps to confidence 1.
	fullScore = 10
)

type Input struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from"`
}

// Score is one row of the score table returned by previews.
type Score struct {
	CategoryID string   `json:"category_id"`
	Category   string   `json:"category"`
	Score      int      `json:"score"`
	Confidence float64  `json:"confidence"`
	Matches    []string `json:"matches"`
}

type Result struct {
	CategoryID string  `json:"category_id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Fallback   bool    `json:"fallback"`
	Scores     []Score `json:"scores"`
}

type Categorizer struct {
	fallback string

	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

// New returns a Categorizer that assigns the category named fallback when no
// rule matches.
func New(fallback string) *Categorizer {
	return &Categorizer{
		fallback: strings.TrimSpace(fallback),
		compiled: make(map[string]*regexp.Regexp),
	}
}

func (c *Categorizer) FallbackName() string {
	return c.fallback
}

// Categorize scores every active category. Ties go to the category that sorts
// first by name.
func (c *Categorizer) Categorize(in Input, categories []*model.Category) Result {
	subject := strings.ToLower(in.Subject)
	body := strings.ToLower(in.Body)
	domain := model.AddressDomain(in.From)

	ordered := make([]*model.Category, len(categories))
	copy(ordered, categories)
	sort.SliceStable(ordered, func(i, j int) bool {
		return strings.ToLower(ordered[i].Name) < strings.ToLower(ordered[j].Name)
	})

	res := Result{Scores: []Score{}}
	best := -1
	for _, cat := range ordered {
		if !cat.Active {
			continue
		}
		s := c.score(cat, subject, body, domain)
		res.Scores = append(res.Scores, s)
		if s.Score > 0 && (best < 0 || s.Score > res.Scores[best].Score) {
			best = len(res.Scores) - 1
		}
	}

	if best >= 0 {
		res.CategoryID = res.Scores[best].CategoryID
		res.Category = res.Scores[best].Category
		res.Confidence = res.Scores[best].Confidence
		return res
	}

	res.Fallback = true
	res.Category = c.fallback
	for _, cat := range ordered {
		if cat.Active && strings.EqualFold(cat.Name, c.fallback) {
			res.CategoryID = cat.ID
			res.Category = cat.Name
			break
		}
	}
	return res
}

// Apply categorizes email in place and returns the full result.
func (c *Categorizer) Apply(email *model.Email, categories []*model.Category) Result {
	res := c.Categorize(Input{Subject: email.Subject, Body: email.Body, From: email.From}, categories)
	email.CategoryID = res.CategoryID
	email.Category = res.Category
	email.Confidence = res.Confidence
	return res
}

func (c *Categorizer) score(cat *model.Category, subject, body, domain string) Score {
	s := Score{CategoryID: cat.ID, Category: cat.Name, Matches: []string{}}

	for _, kw := range cat.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(subject, kw) {
			s.Score += SubjectKeywordWeight
			s.Matches = append(s.Matches, "subject:"+kw)
		}
		if strings.Contains(body, kw) {
			s.Score += BodyKeywordWeight
			s.Matches = append(s.Matches, "body:"+kw)
		}
	}

	for _, p := range cat.Patterns {
		re := c.pattern(p)
		if re == nil {
			continue
		}
		if re.MatchString(subject) || re.MatchString(body) {
			s.Score += PatternWeight
			s.Matches = append(s.Matches, "pattern:"+p)
		}
	}

	if domain != "" {
		for _, d := range cat.Domains {
			d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
			if d == "" {
				continue
			}
			if domain == d || strings.HasSuffix(domain, "."+d) {
				s.Score += DomainWeight
				s.Matches = append(s.Matches, "domain:"+d)
				break
			}
		}
	}

	s.Confidence = confidence(s.Score)
	return s
}

// pattern compiles p case-insensitively and caches it. Patterns that do not
// compile never match.
func (c *Categorizer) pattern(p string) *regexp.Regexp {
	c.mu.RLock()
	re, ok := c.compiled[p]
	c.mu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile("(?i)" + p)
	if err != nil {
		re = nil
	}
	c.mu.Lock()
	c.compiled[p] = re
	c.mu.Unlock()
	return re
}

func confidence(score int) float64 {
	v := math.Min(float64(score)/fullScore, 1)
	return math.Round(v*100) / 100
}
