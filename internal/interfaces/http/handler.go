package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/devfolio/internal/domain"
)

// PortfolioService defines the interface for portfolio operations
type PortfolioService interface {
	Create(ctx context.Context, userID, templateID, name string) (*domain.Portfolio, error)
	GetByID(ctx context.Context, id string) (*domain.Portfolio, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Portfolio, error)
	Update(ctx context.Context, id string, update domain.PortfolioUpdate) error
	UpdateSection(ctx context.Context, portfolioID, sectionID string, patch domain.SectionPatch) error
	Publish(ctx context.Context, id string) error
	Unpublish(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListTemplates(ctx context.Context) ([]domain.PortfolioTemplate, error)
	GetTemplate(ctx context.Context, id string) (*domain.PortfolioTemplate, error)
}

// PublicService serves published portfolios by slug.
type PublicService interface {
	GetPublished(ctx context.Context, slug string) (*domain.Portfolio, error)
	Invalidate(ctx context.Context, slug string)
}

type Handler struct {
	portfolioService PortfolioService
	publicService    PublicService
}

func NewHandler(portfolioService PortfolioService, publicService PublicService) *Handler {
	return &Handler{
		portfolioService: portfolioService,
		publicService:    publicService,
	}
}

type CreatePortfolioRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	Name       string `json:"name" binding:"required,max=200"`
}

type SEORequest struct {
	Title       string   `json:"title" binding:"max=200"`
	Description string   `json:"description" binding:"max=500"`
	Keywords    []string `json:"keywords" binding:"max=20,dive,max=50"`
}

type UpdatePortfolioRequest struct {
	Name         *string           `json:"name" binding:"omitempty,max=200"`
	Sections     []domain.Section  `json:"sections"`
	SEO          *SEORequest       `json:"seo"`
	SocialLinks  map[string]string `json:"socialLinks" binding:"omitempty,dive,keys,social_platform,endkeys,url"`
	CustomDomain *string           `json:"customDomain" binding:"omitempty,fqdn"`
}

func (r UpdatePortfolioRequest) toUpdate() domain.PortfolioUpdate {
	u := domain.PortfolioUpdate{
		Name:         r.Name,
		Sections:     r.Sections,
		SocialLinks:  r.SocialLinks,
		CustomDomain: r.CustomDomain,
	}
	if r.SEO != nil {
		u.SEO = &domain.SEO{
			Title:       r.SEO.Title,
			Description: r.SEO.Description,
			Keywords:    r.SEO.Keywords,
		}
	}
	return u
}

// UpdateSectionRequest patches one section. Content is decoded with the
// shape of Type when given, otherwise with the stored section's type.
type UpdateSectionRequest struct {
	Type      domain.SectionType `json:"type" binding:"omitempty,section_type"`
	Title     *string            `json:"title" binding:"omitempty,max=200"`
	Content   json.RawMessage    `json:"content"`
	Order     *int               `json:"order" binding:"omitempty,min=0"`
	IsVisible *bool              `json:"isVisible"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.portfolioService.ListTemplates(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to list templates", err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

func (h *Handler) GetTemplate(c *gin.Context) {
	templateID := c.Param("id")

	tmpl, err := h.portfolioService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		h.respondError(c, "Failed to get template", err, "template_id", templateID)
		return
	}
	if tmpl == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.NewTemplateNotFound(templateID).Error()})
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

func (h *Handler) CreatePortfolio(c *gin.Context) {
	var req CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	portfolio, err := h.portfolioService.Create(c.Request.Context(), callerID(c), req.TemplateID, req.Name)
	if err != nil {
		h.respondError(c, "Failed to create portfolio", err, "template_id", req.TemplateID)
		return
	}

	c.JSON(http.StatusCreated, portfolio)
}

func (h *Handler) ListPortfolios(c *gin.Context) {
	portfolios, err := h.portfolioService.ListByUser(c.Request.Context(), callerID(c))
	if err != nil {
		h.respondError(c, "Failed to list portfolios", err)
		return
	}

	c.JSON(http.StatusOK, portfolios)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	portfolio, ok := h.ownedPortfolio(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

func (h *Handler) UpdatePortfolio(c *gin.Context) {
	var req UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	portfolio, ok := h.ownedPortfolio(c)
	if !ok {
		return
	}

	if err := h.portfolioService.Update(c.Request.Context(), portfolio.ID, req.toUpdate()); err != nil {
		h.respondError(c, "Failed to update portfolio", err, "portfolio_id", portfolio.ID)
		return
	}

	h.respondFresh(c, portfolio)
}

func (h *Handler) UpdateSection(c *gin.Context) {
	var req UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	portfolio, ok := h.ownedPortfolio(c)
	if !ok {
		return
	}

	sectionID := c.Param("sectionId")
	patch := domain.SectionPatch{
		Title:     req.Title,
		Order:     req.Order,
		IsVisible: req.IsVisible,
	}

	if len(req.Content) > 0 && string(req.Content) != "null" {
		contentType := req.Type
		if contentType == "" {
			if section, found := portfolio.Section(sectionID); found {
				contentType = section.Type
			}
		}
		// Content for an unknown section is dropped; the update is a no-op.
		if contentType != "" {
			content, err := domain.DecodeSectionContent(contentType, req.Content)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			patch.Content = content
		}
	}

	err := h.portfolioService.UpdateSection(c.Request.Context(), portfolio.ID, sectionID, patch)
	if err != nil {
		h.respondError(c, "Failed to update section", err, "portfolio_id", portfolio.ID, "section_id", sectionID)
		return
	}

	h.respondFresh(c, portfolio)
}

func (h *Handler) PublishPortfolio(c *gin.Context) {
	portfolio, ok := h.ownedPortfolio(c)
	if !ok {
		return
	}

	if err := h.portfolioService.Publish(c.Request.Context(), portfolio.ID); err != nil {
		h.respondError(c, "Failed to publish portfolio", err, "portfolio_id", portfolio.ID)
		return
	}

	h.respondFresh(c, portfolio)
}

func (h *Handler) UnpublishPortfolio(c *gin.Context) {
	portfolio, ok := h.ownedPortfolio(c)
	if !ok {
		return
	}

	if err := h.portfolioService.Unpublish(c.Request.Context(), portfolio.ID); err != nil {
		h.respondError(c, "Failed to unpublish portfolio", err, "portfolio_id", portfolio.ID)
		return
	}

	h.respondFresh(c, portfolio)
}

func (h *Handler) DeletePortfolio(c *gin.Context) {
	portfolio, ok := h.ownedPortfolio(c)
	if !ok {
		return
	}

	if err := h.portfolioService.Delete(c.Request.Context(), portfolio.ID); err != nil {
		h.respondError(c, "Failed to delete portfolio", err, "portfolio_id", portfolio.ID)
		return
	}
	h.publicService.Invalidate(c.Request.Context(), portfolio.Slug)

	c.Status(http.StatusNoContent)
}

// PublicView is a published portfolio as shown to visitors: hidden sections
// are dropped and the rest are in display order. The owner and template ids
// are shadowed by always-empty fields so they never reach the page.
type PublicView struct {
	*domain.Portfolio
	Sections   []domain.Section `json:"sections"`
	UserID     string           `json:"userId,omitempty"`
	TemplateID string           `json:"templateId,omitempty"`
}

func (h *Handler) GetPublicPortfolio(c *gin.Context) {
	slug := c.Param("slug")

	portfolio, err := h.publicService.GetPublished(c.Request.Context(), slug)
	if err != nil {
		h.respondError(c, "Failed to get public portfolio", err, "slug", slug)
		return
	}
	if portfolio == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "portfolio not found: " + slug})
		return
	}

	c.JSON(http.StatusOK, PublicView{Portfolio: portfolio, Sections: portfolio.VisibleSections()})
}

// ownedPortfolio loads the portfolio named by the id path parameter and
// checks that the caller owns it. It writes the error response itself.
func (h *Handler) ownedPortfolio(c *gin.Context) (*domain.Portfolio, bool) {
	portfolioID := c.Param("id")

	portfolio, err := h.portfolioService.GetByID(c.Request.Context(), portfolioID)
	if err != nil {
		h.respondError(c, "Failed to get portfolio", err, "portfolio_id", portfolioID)
		return nil, false
	}
	if portfolio == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.NewPortfolioNotFound(portfolioID).Error()})
		return nil, false
	}
	if portfolio.UserID != callerID(c) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "portfolio belongs to another user"})
		return nil, false
	}

	return portfolio, true
}

// respondFresh drops the public cache entry after a mutation and responds with
// the stored document.
func (h *Handler) respondFresh(c *gin.Context, before *domain.Portfolio) {
	ctx := c.Request.Context()
	h.publicService.Invalidate(ctx, before.Slug)

	portfolio, err := h.portfolioService.GetByID(ctx, before.ID)
	if err != nil {
		h.respondError(c, "Failed to reload portfolio", err, "portfolio_id", before.ID)
		return
	}
	if portfolio == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.NewPortfolioNotFound(before.ID).Error()})
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

func (h *Handler) respondError(c *gin.Context, msg string, err error, attrs ...any) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	slog.ErrorContext(c.Request.Context(), msg, append(attrs, "error", err)...)
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
