package domain

// PortfolioTemplate is a read-only catalog entry a portfolio is created from.
type PortfolioTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	IsPremium   bool   `json:"isPremium"`
	PreviewURL  string `json:"previewUrl"`
}

func (t PortfolioTemplate) IsValid() bool {
	return t.ID != "" && t.Name != ""
}

// DefaultTemplates is the catalog seeded into an empty template store.
func DefaultTemplates() []PortfolioTemplate {
	return []PortfolioTemplate{
		{
			ID:          "minimal",
			Name:        "Minimal",
			Description: "A clean single-column layout that puts your work first.",
			Thumbnail:   "/templates/minimal/thumbnail.png",
			PreviewURL:  "/templates/minimal/preview",
		},
		{
			ID:          "terminal",
			Name:        "Terminal",
			Description: "Dark, monospaced and command-line inspired.",
			Thumbnail:   "/templates/terminal/thumbnail.png",
			PreviewURL:  "/templates/terminal/preview",
		},
		{
			ID:          "showcase",
			Name:        "Showcase",
			Description: "Large project cards with images and live demo links.",
			Thumbnail:   "/templates/showcase/thumbnail.png",
			IsPremium:   true,
			PreviewURL:  "/templates/showcase/preview",
		},
	}
}
