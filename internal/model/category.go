package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultCategoryColor = "#6B7280"

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Active      bool      `json:"active"`
	Keywords    []string  `json:"keywords"`
	Patterns    []string  `json:"patterns"`
	Domains     []string  `json:"domains"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCategory(name, description string) *Category {
	now := time.Now()
	return &Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Color:       DefaultCategoryColor,
		Active:      true,
		Keywords:    []string{},
		Patterns:    []string{},
		Domains:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Normalize trims rule lists, lowercases keywords and domains and drops blanks
// and duplicates.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	c.Keywords = cleanList(c.Keywords, true)
	c.Patterns = cleanList(c.Patterns, false)
	domains := make([]string, len(c.Domains))
	for i, d := range c.Domains {
		domains[i] = strings.TrimPrefix(strings.TrimSpace(d), "@")
	}
	c.Domains = cleanList(domains, true)
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return invalid("name is required")
	}
	if !colorRe.MatchString(c.Color) {
		return invalid("color must be a hex value like #1A2B3C")
	}
	for _, p := range c.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return invalid("pattern %q does not compile: %v", p, err)
		}
	}
	return nil
}

func cleanList(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
