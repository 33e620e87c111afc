package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/modesta/storefront-api/internal/domain/media"
	"github.com/modesta/storefront-api/internal/validate"
)

const (
	maxNameLen        = 200
	maxDescriptionLen = 2000
	maxFeatureLen     = 200
	maxFeatures       = 10
	minFeatures       = 2
	maxMediaURLs      = 20
)

// maxPrice caps the price accepted from the admin form.
var maxPrice = decimal.NewFromInt(10_000_000)

// InvalidInputError reports a rejected admin catalog mutation with a
// human-readable reason safe to surface to the caller.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

func invalidf(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// CreateInput holds a full product submission from the admin upload form.
type CreateInput struct {
	Name        string
	Description string
	Category    Category
	Price       decimal.Decimal
	Features    []string
	Media       []string
	HasSizes    bool
	Stock       int
	Sizes       []Size
}

// UpdateInput holds a partial product update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *Category
	Price       *decimal.Decimal
	Features    *[]string
	Media       *[]string
	HasSizes    *bool
	Stock       *int
	Sizes       *[]Size
}

// Service implements the admin-facing catalog operations: validated CRUD on
// products plus best-effort media cleanup on deletion.
type Service struct {
	repo        Repository
	media       media.Store
	mediaPrefix string
}

// NewService creates a catalog Service. mediaPrefix restricts stored media
// URLs to assets issued by the configured media host.
func NewService(repo Repository, mediaStore media.Store, mediaPrefix string) *Service {
	return &Service{repo: repo, media: mediaStore, mediaPrefix: mediaPrefix}
}

// List returns all products, newest first.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Get returns a single product by identifier.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, invalidf("Invalid product ID")
	}
	return s.repo.GetByID(ctx, id)
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	name, err := s.cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	description, err := s.cleanDescription(in.Description)
	if err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, invalidf("Invalid category")
	}
	if err := validPrice(in.Price); err != nil {
		return nil, err
	}
	features, err := s.cleanFeatures(in.Features)
	if err != nil {
		return nil, err
	}
	mediaURLs, err := s.cleanMedia(in.Media)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Category:    in.Category,
		Price:       in.Price,
		Features:    features,
		Media:       mediaURLs,
		HasSizes:    in.HasSizes,
		CreatedAt:   time.Now().UTC(),
	}
	p.UpdatedAt = p.CreatedAt

	if err := s.applyInventory(p, in.HasSizes, in.Stock, in.Sizes); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}

// Update applies a partial, allow-listed update to an existing product.
// Inventory fields are validated together so the product always leaves with
// exactly one live inventory representation.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, invalidf("Invalid product ID")
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := s.cleanName(*in.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if in.Description != nil {
		description, err := s.cleanDescription(*in.Description)
		if err != nil {
			return nil, err
		}
		p.Description = description
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, invalidf("Invalid category")
		}
		p.Category = *in.Category
	}
	if in.Price != nil {
		if err := validPrice(*in.Price); err != nil {
			return nil, err
		}
		p.Price = *in.Price
	}
	if in.Features != nil {
		features, err := s.cleanFeatures(*in.Features)
		if err != nil {
			return nil, err
		}
		p.Features = features
	}
	if in.Media != nil {
		mediaURLs, err := s.cleanMedia(*in.Media)
		if err != nil {
			return nil, err
		}
		p.Media = mediaURLs
	}

	if in.HasSizes != nil || in.Stock != nil || in.Sizes != nil {
		hasSizes := p.HasSizes
		if in.HasSizes != nil {
			hasSizes = *in.HasSizes
		}
		stock := p.Stock
		if in.Stock != nil {
			stock = *in.Stock
		}
		sizes := p.Sizes
		if in.Sizes != nil {
			sizes = *in.Sizes
		}
		if err := s.applyInventory(p, hasSizes, stock, sizes); err != nil {
			return nil, err
		}
	}

	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return p, nil
}

// Delete removes a product and its media assets. Asset deletion is best
// effort per asset: failures are logged and never block the record delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return invalidf("Invalid product ID")
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if failed := media.Cleanup(ctx, s.media, p.Media); len(failed) > 0 {
		zctx.From(ctx).Warn("Some media assets were not deleted",
			zap.String("product_id", id),
			zap.Int("failed", len(failed)),
		)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete product")
	}
	return nil
}

// applyInventory normalises and validates the inventory fields onto p,
// keeping the flat counter and size buckets mutually exclusive and the
// cached total in sync.
func (s *Service) applyInventory(p *Product, hasSizes bool, stock int, sizes []Size) error {
	if hasSizes {
		cleaned := make([]Size, 0, len(sizes))
		for _, sz := range sizes {
			label := validate.Sanitize(sz.Label)
			if !validate.ValidSizeLabel(label) {
				return invalidf("Invalid size label")
			}
			cleaned = append(cleaned, Size{Label: label, Stock: sz.Stock})
		}
		if err := ValidateSizes(cleaned); err != nil {
			return &InvalidInputError{Reason: err.Error()}
		}
		p.HasSizes = true
		p.Sizes = cleaned
		p.Stock = p.TotalSizeStock()
		return nil
	}

	if stock < 0 {
		return invalidf("Stock cannot be negative")
	}
	p.HasSizes = false
	p.Sizes = nil
	p.Stock = stock
	return nil
}

func (s *Service) cleanName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", invalidf("Product name is required")
	}
	if validate.ContainsMaliciousContent(name) {
		return "", invalidf("Invalid characters in name")
	}
	return validate.Truncate(validate.Sanitize(name), maxNameLen), nil
}

func (s *Service) cleanDescription(description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", invalidf("Description is required")
	}
	if validate.ContainsMaliciousContent(description) {
		return "", invalidf("Invalid characters in description")
	}
	return validate.Truncate(validate.Sanitize(description), maxDescriptionLen), nil
}

func (s *Service) cleanFeatures(features []string) ([]string, error) {
	cleaned := make([]string, 0, len(features))
	for _, f := range features {
		f = validate.Truncate(validate.Sanitize(f), maxFeatureLen)
		if f != "" {
			cleaned = append(cleaned, f)
		}
	}
	if len(cleaned) < minFeatures {
		return nil, invalidf("Please provide at least %d key features", minFeatures)
	}
	if len(cleaned) > maxFeatures {
		cleaned = cleaned[:maxFeatures]
	}
	return cleaned, nil
}

func (s *Service) cleanMedia(urls []string) ([]string, error) {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if s.mediaPrefix != "" && !strings.HasPrefix(u, s.mediaPrefix) {
			continue
		}
		cleaned = append(cleaned, u)
	}
	if len(cleaned) == 0 {
		return nil, invalidf("Please provide at least 1 media asset")
	}
	if len(cleaned) > maxMediaURLs {
		cleaned = cleaned[:maxMediaURLs]
	}
	return cleaned, nil
}

func validPrice(price decimal.Decimal) error {
	if price.IsNegative() || price.GreaterThan(maxPrice) {
		return invalidf("Invalid price")
	}
	return nil
}
