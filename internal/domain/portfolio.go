package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

const slugIDPrefixLen = 8

// whitespaceRun matches the same characters as an ECMAScript \s class,
// which is wider than RE2's ASCII-only \s.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Portfolio is the aggregate root for one user-owned portfolio site.
// Sections are embedded and have no identity outside their portfolio.
type Portfolio struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	TemplateID   string            `json:"templateId"`
	Sections     []Section         `json:"sections"`
	CustomDomain string            `json:"customDomain,omitempty"`
	SEO          SEO               `json:"seo"`
	SocialLinks  map[string]string `json:"socialLinks"`
	CreatedAt    int64             `json:"createdAt"`
	UpdatedAt    int64             `json:"updatedAt"`
	PublishedAt  *int64            `json:"publishedAt,omitempty"`
	IsPublished  bool              `json:"isPublished"`
}

// DeriveSlug lowercases name, turns each whitespace run into a hyphen and
// appends the first eight characters of id.
func DeriveSlug(name, id string) string {
	prefix := id
	if len(prefix) > slugIDPrefixLen {
		prefix = prefix[:slugIDPrefixLen]
	}
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-") + "-" + prefix
}

// NewPortfolio builds a draft portfolio seeded with the default sections.
// now is in epoch milliseconds.
func NewPortfolio(id, userID, templateID, name string, now int64) (Portfolio, error) {
	switch {
	case strings.TrimSpace(id) == "":
		return Portfolio{}, NewValidationError("id", "must not be empty")
	case strings.TrimSpace(userID) == "":
		return Portfolio{}, NewValidationError("userId", "must not be empty")
	case strings.TrimSpace(templateID) == "":
		return Portfolio{}, NewValidationError("templateId", "must not be empty")
	case strings.TrimSpace(name) == "":
		return Portfolio{}, NewValidationError("name", "must not be empty")
	}

	return Portfolio{
		ID:         id,
		UserID:     userID,
		Name:       name,
		Slug:       DeriveSlug(name, id),
		TemplateID: templateID,
		Sections:   DefaultSections(),
		SEO: SEO{
			Title:       name,
			Description: "My professional portfolio",
			Keywords:    []string{"portfolio", "developer", "projects"},
		},
		SocialLinks: map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
		IsPublished: false,
	}, nil
}

func (p Portfolio) Status() string {
	if p.IsPublished {
		return "published"
	}
	return "draft"
}

// Section returns the section with the given id.
func (p *Portfolio) Section(id string) (*Section, bool) {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i], true
		}
	}
	return nil, false
}

// OrderedSections returns a copy of the sections sorted by their order field.
func (p Portfolio) OrderedSections() []Section {
	out := make([]Section, len(p.Sections))
	copy(out, p.Sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// VisibleSections is OrderedSections without the hidden ones.
func (p Portfolio) VisibleSections() []Section {
	ordered := p.OrderedSections()
	out := ordered[:0]
	for _, s := range ordered {
		if s.IsVisible {
			out = append(out, s)
		}
	}
	return out
}

func (p Portfolio) PublishedTime() (time.Time, bool) {
	if p.PublishedAt == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*p.PublishedAt), true
}

func (p Portfolio) Clone() Portfolio {
	out := p
	out.Sections = CloneSections(p.Sections)
	out.SEO.Keywords = cloneStrings(p.SEO.Keywords)
	if p.SocialLinks != nil {
		out.SocialLinks = make(map[string]string, len(p.SocialLinks))
		for k, v := range p.SocialLinks {
			out.SocialLinks[k] = v
		}
	}
	if p.PublishedAt != nil {
		at := *p.PublishedAt
		out.PublishedAt = &at
	}
	return out
}

func CloneSections(in []Section) []Section {
	if in == nil {
		return nil
	}
	out := make([]Section, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

// ValidateSections checks every section and that ids are unique.
func ValidateSections(sections []Section) error {
	seen := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.ID]; dup {
			return NewValidationError("sections", "duplicate section id "+s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// PortfolioUpdate is a partial update merged into a stored portfolio.
// Nil fields are left untouched. Identity fields (id, userId, slug,
// templateId, createdAt) have no counterpart here and cannot change.
type PortfolioUpdate struct {
	Name         *string
	Sections     []Section
	SEO          *SEO
	SocialLinks  map[string]string
	CustomDomain *string
	IsPublished  *bool
	PublishedAt  *int64
	UpdatedAt    int64
}

func (u PortfolioUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if u.Sections != nil {
		if err := ValidateSections(u.Sections); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges u into p.
func (u PortfolioUpdate) Apply(p *Portfolio) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Sections != nil {
		p.Sections = CloneSections(u.Sections)
	}
	if u.SEO != nil {
		p.SEO = SEO{
			Title:       u.SEO.Title,
			Description: u.SEO.Description,
			Keywords:    cloneStrings(u.SEO.Keywords),
		}
	}
	if u.SocialLinks != nil {
		p.SocialLinks = make(map[string]string, len(u.SocialLinks))
		for k, v := range u.SocialLinks {
			p.SocialLinks[k] = v
		}
	}
	if u.CustomDomain != nil {
		p.CustomDomain = *u.CustomDomain
	}
	if u.IsPublished != nil {
		p.IsPublished = *u.IsPublished
	}
	if u.PublishedAt != nil {
		at := *u.PublishedAt
		p.PublishedAt = &at
	}
	p.UpdatedAt = u.UpdatedAt
}
