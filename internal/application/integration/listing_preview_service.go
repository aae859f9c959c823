package integration

import (
	"context"

	"github.com/erp/marketsync/internal/domain/integration"
)

// ListingPreviewService answers read-only questions about a record's listing
type ListingPreviewService struct {
	classifier *integration.ProductClassifier
	builder    *integration.CreatePayloadBuilder
}

// NewListingPreviewService creates a new ListingPreviewService
func NewListingPreviewService(classifier *integration.ProductClassifier, builder *integration.CreatePayloadBuilder) *ListingPreviewService {
	return &ListingPreviewService{classifier: classifier, builder: builder}
}

// Classify resolves head and reports its classification
func (s *ListingPreviewService) Classify(ctx context.Context, head integration.SyncHead) (*ProductClassification, error) {
	product, err := s.classifier.Resolve(ctx, head)
	if err != nil {
		return nil, err
	}

	c := s.classifier
	result := &ProductClassification{
		Head:          head,
		Kind:          c.Classify(product),
		SyncActive:    c.IsSyncActive(product),
		NeedsSkipping: c.RecordNeedsSkipping(product),
		Attributes:    c.VariantAttributes(product),
		BulletPoints:  c.BulletPoints(product),
	}
	if sku, ok := c.SKU(product); ok {
		result.SKU = &sku
	}

	template := product
	if c.IsVariant(product) {
		if sku, ok := c.TemplateSKU(product); ok {
			result.TemplateSKU = &sku
		}
		if t, ok := product.Record(integration.FieldProductTemplateID); ok {
			template = t
		}
	}
	result.TemplateAttributeNames = c.TemplateAttributeNames(template)
	return result, nil
}

// PreviewCreate builds the create payload for head without queuing anything
func (s *ListingPreviewService) PreviewCreate(ctx context.Context, head integration.SyncHead) (*CreatePreview, error) {
	result, err := s.builder.Build(ctx, integration.NewCreateOperation(head))
	if err != nil {
		return nil, err
	}
	return ToCreatePreview(head, result), nil
}
