package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rdrlink/shortener/internal/config"
	"github.com/rdrlink/shortener/internal/metrics"
	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/repository"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Codes that would shadow service routes.
var reservedCodes = map[string]bool{
	"api":     true,
	"health":  true,
	"ready":   true,
	"live":    true,
	"metrics": true,
}

// CreateLinkInput is a validated link creation request.
type CreateLinkInput struct {
	URL         string     `validate:"required,max=2048"`
	Domain      string     `validate:"omitempty,hostname_rfc1123,max=253"`
	CustomCode  string     `validate:"omitempty,shortcode"`
	Title       *string    `validate:"omitempty,max=255"`
	Description *string    `validate:"omitempty,max=2000"`
	Password    *string    `validate:"omitempty,min=1,max=72"`
	ExpiresAt   *time.Time `validate:"omitempty"`
	ProjectID   *uuid.UUID
	OwnerID     *uuid.UUID
}

// UpdateLinkInput changes the non-nil fields of a link.
type UpdateLinkInput struct {
	Title       *string    `validate:"omitempty,max=255"`
	Description *string    `validate:"omitempty,max=2000"`
	Password    *string    `validate:"omitempty,min=1,max=72"`
	ExpiresAt   *time.Time `validate:"omitempty"`
}

// ListLinksInput selects a page of an owner's links.
type ListLinksInput struct {
	OwnerID   uuid.UUID
	ProjectID *uuid.UUID
	Search    string
	Cursor    *uuid.UUID
	Limit     int
}

// LinkService handles link creation and owner-scoped management.
type LinkService struct {
	links    LinkStore
	resolver *Resolver
	cfg      config.ShortenerConfig
	validate *validator.Validate
	generate CodeGenerator
	logger   *zap.Logger
}

// LinkServiceOption customizes a LinkService.
type LinkServiceOption func(*LinkService)

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(g CodeGenerator) LinkServiceOption {
	return func(s *LinkService) { s.generate = g }
}

// NewLinkService creates a new link service.
func NewLinkService(links LinkStore, resolver *Resolver, cfg config.ShortenerConfig, logger *zap.Logger, opts ...LinkServiceOption) *LinkService {
	v := validator.New()
	_ = v.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
		return shortCodePattern.MatchString(fl.Field().String())
	})

	s := &LinkService{
		links:    links,
		resolver: resolver,
		cfg:      cfg,
		validate: v,
		generate: GenerateCode,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===========================================
// Core Business Operations
// ===========================================

// Create stores a new link.
//
// FLOW:
// 1. Validate input
// 2. Use the custom code, or draw random codes until one is free
// 3. Store in database
// 4. Return the link with its short URL
func (s *LinkService) Create(ctx context.Context, in CreateLinkInput) (*models.LinkResponse, error) {
	in.Domain = strings.ToLower(strings.TrimSpace(in.Domain))
	if err := s.validateCreate(in); err != nil {
		return nil, err
	}

	link := &models.Link{
		ID:          uuid.New(),
		Domain:      in.Domain,
		URL:         in.URL,
		Title:       in.Title,
		Description: in.Description,
		ExpiresAt:   in.ExpiresAt,
		OwnerID:     in.OwnerID,
		ProjectID:   in.ProjectID,
	}
	if link.Domain == "" {
		link.Domain = s.cfg.PrimaryDomain
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		link.PasswordHash = &hash
	}

	var err error
	if in.CustomCode != "" {
		err = s.createWithCustomCode(ctx, link, in.CustomCode)
	} else {
		err = s.createWithGeneratedCode(ctx, link)
	}
	if err != nil {
		return nil, err
	}

	// Drops an absent marker left by lookups through this domain.
	s.resolver.Invalidate(ctx, link)

	s.logger.Info("link created",
		zap.String("link_id", link.ID.String()),
		zap.String("domain", link.Domain),
		zap.String("short_code", link.ShortCode),
	)
	return s.toResponse(link), nil
}

func (s *LinkService) createWithCustomCode(ctx context.Context, link *models.Link, code string) error {
	exists, err := s.links.ExistsInDomain(ctx, code, link.Domain)
	if err != nil {
		return fmt.Errorf("failed to check code availability: %w", err)
	}
	if exists {
		return ErrCodeTaken
	}

	link.ShortCode = code
	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to store link: %w", err)
	}
	metrics.LinksCreatedTotal.WithLabelValues("custom").Inc()
	return nil
}

// A code that loses an insert race still spends one attempt.
func (s *LinkService) createWithGeneratedCode(ctx context.Context, link *models.Link) error {
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		code, err := s.generate(s.cfg.CodeLength)
		if err != nil {
			return fmt.Errorf("failed to generate code: %w", err)
		}

		exists, err := s.links.ExistsInDomain(ctx, code, link.Domain)
		if err != nil {
			return fmt.Errorf("failed to check code availability: %w", err)
		}
		if exists {
			s.logger.Debug("short code collision", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}

		link.ShortCode = code
		err = s.links.Create(ctx, link)
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.logger.Debug("short code taken concurrently", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to store link: %w", err)
		}
		metrics.LinksCreatedTotal.WithLabelValues("generated").Inc()
		return nil
	}

	metrics.CodeGenerationFailuresTotal.Inc()
	s.logger.Error("short code space exhausted",
		zap.String("domain", link.Domain), zap.Int("attempts", s.cfg.MaxAttempts))
	return ErrCodeGeneration
}

// GetByShortCode is the public lookup of a link in exactly one domain.
func (s *LinkService) GetByShortCode(ctx context.Context, shortCode, domain string) (*models.Link, error) {
	domain = NormalizeDomain(domain, s.cfg.PrimaryDomain)
	link, err := s.links.FindByCode(ctx, shortCode, []string{domain})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	if link.IsExpired() {
		return nil, ErrLinkExpired
	}
	return link, nil
}

// GetOwned returns a link only to its owner. Links owned by someone else
// are reported as not found.
func (s *LinkService) GetOwned(ctx context.Context, owner, id uuid.UUID) (*models.LinkResponse, error) {
	link, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(link), nil
}

// List returns one page of the owner's links, newest first.
func (s *LinkService) List(ctx context.Context, in ListLinksInput) (*models.LinkListResponse, error) {
	limit := in.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxListLimit)
	}

	links, err := s.links.ListByOwner(ctx, models.LinkFilter{
		OwnerID:   in.OwnerID,
		ProjectID: in.ProjectID,
		Search:    strings.TrimSpace(in.Search),
		Cursor:    in.Cursor,
		Limit:     limit + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	resp := &models.LinkListResponse{Items: make([]models.LinkResponse, 0, len(links))}
	if len(links) > limit {
		next := links[limit].ID
		resp.NextCursor = &next
		links = links[:limit]
	}
	for i := range links {
		resp.Items = append(resp.Items, *s.toResponse(&links[i]))
	}
	return resp, nil
}

// Update changes a link the owner holds and evicts it from the cache.
func (s *LinkService) Update(ctx context.Context, owner, id uuid.UUID, in UpdateLinkInput) (*models.LinkResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	link, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		link.Title = in.Title
	}
	if in.Description != nil {
		link.Description = in.Description
	}
	if in.ExpiresAt != nil {
		link.ExpiresAt = in.ExpiresAt
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		link.PasswordHash = &hash
	}

	if err := s.links.Update(ctx, link); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to update link: %w", err)
	}
	s.resolver.Invalidate(ctx, link)
	return s.toResponse(link), nil
}

// Delete removes a link the owner holds, with its click events.
func (s *LinkService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	link, err := s.owned(ctx, owner, id)
	if err != nil {
		return err
	}

	if err := s.links.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to delete link: %w", err)
	}
	s.resolver.Invalidate(ctx, link)
	s.logger.Info("link deleted", zap.String("link_id", id.String()))
	return nil
}

// ShortURL is the public URL of link.
func (s *LinkService) ShortURL(link *models.Link) string {
	return fmt.Sprintf("%s://%s/%s", s.cfg.ShortURLScheme, link.Domain, link.ShortCode)
}

func (s *LinkService) owned(ctx context.Context, owner, id uuid.UUID) (*models.Link, error) {
	link, err := s.links.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	if !link.IsOwnedBy(owner) {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (s *LinkService) toResponse(link *models.Link) *models.LinkResponse {
	return &models.LinkResponse{
		Link:        link,
		ShortURL:    s.ShortURL(link),
		HasPassword: link.HasPassword(),
	}
}

// ===========================================
// Validation Helpers
// ===========================================

func (s *LinkService) validateCreate(in CreateLinkInput) error {
	if !isValidURL(in.URL) {
		return ErrInvalidURL
	}

	if in.CustomCode != "" {
		n := len(in.CustomCode)
		if n < s.cfg.CustomCodeMinLength || n > s.cfg.CustomCodeMaxLength {
			return fmt.Errorf("%w: length must be between %d and %d",
				ErrInvalidCode, s.cfg.CustomCodeMinLength, s.cfg.CustomCodeMaxLength)
		}
		if reservedCodes[strings.ToLower(in.CustomCode)] {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidCode, in.CustomCode)
		}
	}

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "CustomCode":
				return fmt.Errorf("%w: only letters, digits, '-' and '_' are allowed", ErrInvalidCode)
			case "URL":
				return ErrInvalidURL
			}
			return fmt.Errorf("%w: %s failed %q", ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// isValidURL accepts absolute http(s) URLs only.
// SECURITY: blocks javascript:, data:, file:, etc.
func isValidURL(rawURL string) bool {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return false
	}
	u, err := url.Parse(rawURL)
	return err == nil && u.Host != ""
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
