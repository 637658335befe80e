package domain

import (
	"encoding/json"
	"fmt"
)

type SectionType string

const (
	SectionHero       SectionType = "hero"
	SectionAbout      SectionType = "about"
	SectionSkills     SectionType = "skills"
	SectionProjects   SectionType = "projects"
	SectionExperience SectionType = "experience"
	SectionEducation  SectionType = "education"
	SectionContact    SectionType = "contact"
)

func (t SectionType) IsValid() bool {
	switch t {
	case SectionHero, SectionAbout, SectionSkills, SectionProjects,
		SectionExperience, SectionEducation, SectionContact:
		return true
	}
	return false
}

// SectionContent is the payload of a Section. The set of implementations is
// closed: one struct per SectionType.
type SectionContent interface {
	Type() SectionType
	clone() SectionContent
}

type HeroContent struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	CTAText     string `json:"ctaText"`
	CTALink     string `json:"ctaLink"`
}

func (HeroContent) Type() SectionType       { return SectionHero }
func (c HeroContent) clone() SectionContent { return c }

type AboutContent struct {
	Bio      string `json:"bio"`
	ImageURL string `json:"imageUrl"`
}

func (AboutContent) Type() SectionType       { return SectionAbout }
func (c AboutContent) clone() SectionContent { return c }

type SkillsContent struct {
	Skills []string `json:"skills"`
}

func (SkillsContent) Type() SectionType { return SectionSkills }
func (c SkillsContent) clone() SectionContent {
	return SkillsContent{Skills: cloneStrings(c.Skills)}
}

type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url,omitempty"`
	RepoURL     string   `json:"repoUrl,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type ProjectsContent struct {
	Projects []Project `json:"projects"`
}

func (ProjectsContent) Type() SectionType { return SectionProjects }
func (c ProjectsContent) clone() SectionContent {
	if c.Projects == nil {
		return c
	}
	projects := make([]Project, len(c.Projects))
	for i, p := range c.Projects {
		p.Tags = cloneStrings(p.Tags)
		projects[i] = p
	}
	return ProjectsContent{Projects: projects}
}

type ExperienceEntry struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

type ExperienceContent struct {
	Entries []ExperienceEntry `json:"entries"`
}

func (ExperienceContent) Type() SectionType { return SectionExperience }
func (c ExperienceContent) clone() SectionContent {
	if c.Entries == nil {
		return c
	}
	return ExperienceContent{Entries: append(make([]ExperienceEntry, 0, len(c.Entries)), c.Entries...)}
}

type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
}

type EducationContent struct {
	Entries []EducationEntry `json:"entries"`
}

func (EducationContent) Type() SectionType { return SectionEducation }
func (c EducationContent) clone() SectionContent {
	if c.Entries == nil {
		return c
	}
	return EducationContent{Entries: append(make([]EducationEntry, 0, len(c.Entries)), c.Entries...)}
}

type ContactContent struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (ContactContent) Type() SectionType       { return SectionContact }
func (c ContactContent) clone() SectionContent { return c }

// DecodeSectionContent parses raw JSON into the content shape for t.
func DecodeSectionContent(t SectionType, raw []byte) (SectionContent, error) {
	var (
		content SectionContent
		err     error
	)
	switch t {
	case SectionHero:
		var c HeroContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionAbout:
		var c AboutContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionSkills:
		var c SkillsContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionProjects:
		var c ProjectsContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionExperience:
		var c ExperienceContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionEducation:
		var c EducationContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionContact:
		var c ContactContent
		err = json.Unmarshal(raw, &c)
		content = c
	default:
		return nil, fmt.Errorf("unknown section type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s content: %w", t, err)
	}
	return content, nil
}

type Section struct {
	ID        string         `json:"id"`
	Type      SectionType    `json:"type"`
	Title     string         `json:"title"`
	Content   SectionContent `json:"content"`
	Order     int            `json:"order"`
	IsVisible bool           `json:"isVisible"`
}

type sectionJSON struct {
	ID        string          `json:"id"`
	Type      SectionType     `json:"type"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Order     int             `json:"order"`
	IsVisible bool            `json:"isVisible"`
}

// UnmarshalJSON resolves the content shape from the type tag.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw sectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.IsValid() {
		return fmt.Errorf("unknown section type %q", raw.Type)
	}

	content := raw.Content
	if len(content) == 0 || string(content) == "null" {
		content = []byte("{}")
	}
	decoded, err := DecodeSectionContent(raw.Type, content)
	if err != nil {
		return err
	}

	*s = Section{
		ID:        raw.ID,
		Type:      raw.Type,
		Title:     raw.Title,
		Content:   decoded,
		Order:     raw.Order,
		IsVisible: raw.IsVisible,
	}
	return nil
}

func (s Section) Validate() error {
	if s.ID == "" {
		return NewValidationError("section.id", "must not be empty")
	}
	if !s.Type.IsValid() {
		return NewValidationError("section.type", fmt.Sprintf("unknown type %q", s.Type))
	}
	if s.Content != nil && s.Content.Type() != s.Type {
		return NewValidationError("section.content",
			fmt.Sprintf("%s content does not fit a %s section", s.Content.Type(), s.Type))
	}
	return nil
}

func (s Section) Clone() Section {
	if s.Content != nil {
		s.Content = s.Content.clone()
	}
	return s
}

// SectionPatch carries the fields of a section-level partial update.
// Nil fields are left untouched.
type SectionPatch struct {
	Title     *string
	Content   SectionContent
	Order     *int
	IsVisible *bool
}

func (p SectionPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Order == nil && p.IsVisible == nil
}

// Apply merges the patch into s. The section type is fixed, so content of a
// different kind is rejected.
func (p SectionPatch) Apply(s *Section) error {
	if p.Content != nil && p.Content.Type() != s.Type {
		return NewValidationError("content",
			fmt.Sprintf("%s content does not fit section %q of type %s", p.Content.Type(), s.ID, s.Type))
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Content != nil {
		s.Content = p.Content.clone()
	}
	if p.Order != nil {
		s.Order = *p.Order
	}
	if p.IsVisible != nil {
		s.IsVisible = *p.IsVisible
	}
	return nil
}

// DefaultSections returns the sections seeded into every new portfolio.
func DefaultSections() []Section {
	return []Section{
		{
			ID:    "hero",
			Type:  SectionHero,
			Title: "Hero",
			Content: HeroContent{
				Headline:    "Hello, I am a Developer",
				Subheadline: "I build amazing web applications",
				CTAText:     "View My Work",
				CTALink:     "#projects",
			},
			Order:     0,
			IsVisible: true,
		},
		{
			ID:    "about",
			Type:  SectionAbout,
			Title: "About Me",
			Content: AboutContent{
				Bio: "I am a passionate developer with experience in web technologies.",
			},
			Order:     1,
			IsVisible: true,
		},
		{
			ID:        "skills",
			Type:      SectionSkills,
			Title:     "Skills",
			Content:   SkillsContent{Skills: []string{"JavaScript", "React", "CSS", "HTML"}},
			Order:     2,
			IsVisible: true,
		},
		{
			ID:        "projects",
			Type:      SectionProjects,
			Title:     "Projects",
			Content:   ProjectsContent{Projects: []Project{}},
			Order:     3,
			IsVisible: true,
		},
		{
			ID:    "contact",
			Type:  SectionContact,
			Title: "Contact",
			Content: ContactContent{
				Message: "Feel free to reach out to me!",
			},
			Order:     4,
			IsVisible: true,
		},
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
