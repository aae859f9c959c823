package integration

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Variation dimension attribute names. Only these two are recognized.
const (
	attributeColor = "Color"
	attributeSize  = "Size"
)

// ---------------------------------------------------------------------------
// BaseTransformer
// ---------------------------------------------------------------------------

// BaseTransformer produces the payload skeleton shared by every feed operation
type BaseTransformer interface {
	Transform(ctx context.Context, op SyncOperation, product FieldSource) (Payload, error)
}

// SKUBaseTransformer starts every payload with the record's SKU. A
// multi-variant template without one gets its derived parent SKU.
type SKUBaseTransformer struct {
	classifier *ProductClassifier
}

// NewSKUBaseTransformer creates a new SKUBaseTransformer
func NewSKUBaseTransformer(classifier *ProductClassifier) *SKUBaseTransformer {
	return &SKUBaseTransformer{classifier: classifier}
}

// Transform implements BaseTransformer
func (t *SKUBaseTransformer) Transform(_ context.Context, _ SyncOperation, product FieldSource) (Payload, error) {
	sku, ok := t.classifier.SKU(product)
	if !ok || sku == "" {
		if !t.classifier.IsMultiVariantTemplate(product) {
			return nil, NewMissingRequiredFieldError(FeedSKU)
		}
		sku = t.classifier.ParentSKU(product)
	}
	return Payload{FeedSKU: sku}, nil
}

// ---------------------------------------------------------------------------
// CreatePayloadBuilder
// ---------------------------------------------------------------------------

// CreatePayloadBuilder derives the marketplace "create" entry for a sync head.
// It keeps no state between calls.
type CreatePayloadBuilder struct {
	classifier *ProductClassifier
	base       BaseTransformer
	logger     *zap.Logger
}

// CreatePayloadBuilderOption configures a CreatePayloadBuilder
type CreatePayloadBuilderOption func(*CreatePayloadBuilder)

// WithBuilderLogger sets the logger
func WithBuilderLogger(logger *zap.Logger) CreatePayloadBuilderOption {
	return func(b *CreatePayloadBuilder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithBaseTransformer replaces the default SKU base transformer
func WithBaseTransformer(base BaseTransformer) CreatePayloadBuilderOption {
	return func(b *CreatePayloadBuilder) {
		b.base = base
	}
}

// NewCreatePayloadBuilder creates a new CreatePayloadBuilder
func NewCreatePayloadBuilder(classifier *ProductClassifier, opts ...CreatePayloadBuilderOption) *CreatePayloadBuilder {
	b := &CreatePayloadBuilder{
		classifier: classifier,
		base:       NewSKUBaseTransformer(classifier),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves the operation's head and returns *Built or *Rejected.
// Errors are ErrRecordNotFound, a MissingRequiredFieldError, or lookup failures.
func (b *CreatePayloadBuilder) Build(ctx context.Context, op SyncOperation) (CreateResult, error) {
	if op.Type != OperationCreate {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op.Type)
	}

	product, err := b.classifier.Resolve(ctx, op.Head)
	if err != nil {
		return nil, err
	}
	return b.BuildFor(ctx, op, product)
}

// BuildFor builds the payload for an already resolved record
// A partial variant is rejected before any field is required of it.
func (b *CreatePayloadBuilder) BuildFor(ctx context.Context, op SyncOperation, product FieldSource) (CreateResult, error) {
	logger := b.logger.With(
		zap.String("model_name", op.Head.ModelName.String()),
		zap.Int64("record_id", op.Head.RecordID),
	)

	if b.classifier.IsPartialVariant(product) {
		logger.Warn("Refusing create payload for partial variant")
		return &Rejected{
			Reason: RejectPartialVariant,
			Detail: "variant has no attribute values",
		}, nil
	}

	payload, err := b.base.Transform(ctx, op, product)
	if err != nil {
		return nil, err
	}

	if err := b.convertDescription(product, payload); err != nil {
		return nil, err
	}

	if b.classifier.IsVariant(product) {
		payload[FeedParentage] = ParentageChild
		return b.convertVariation(product, payload, logger), nil
	}

	if strings.TrimSpace(payload.String(FeedDescription)) == "" {
		return nil, NewMissingRequiredFieldError(FeedDescription)
	}
	if b.classifier.IsMultiVariantTemplate(product) {
		payload[FeedParentage] = ParentageParent
	}
	return &Built{Payload: payload}, nil
}

// convertDescription fills Title, Description, Brand and BulletPoint.
// Only Title is enforced here; templates enforce Description in Build.
func (b *CreatePayloadBuilder) convertDescription(product FieldSource, payload Payload) error {
	title, _ := product.String(FieldDisplayName)
	if !payload.setNonBlank(FeedTitle, title) {
		return NewMissingRequiredFieldError(FeedTitle)
	}

	description, _ := product.String(FieldAmazonDescription)
	if strings.TrimSpace(description) == "" {
		description, _ = product.String(FieldDescriptionSale)
	}
	payload.setNonBlank(FeedDescription, description)

	brand, _ := product.String(FieldProductBrand)
	payload.setNonBlank(FeedBrand, brand)

	if bullets := b.classifier.BulletPoints(product); len(bullets) > 0 {
		payload[FeedBulletPoint] = bullets
	}
	return nil
}

// convertVariation sets Color, Size and VariationTheme from the variant's attributes
func (b *CreatePayloadBuilder) convertVariation(product FieldSource, payload Payload, logger *zap.Logger) CreateResult {
	var hasColor, hasSize bool
	for _, attr := range b.classifier.VariantAttributes(product) {
		switch {
		case attr.Name == attributeColor && !hasColor:
			payload[FeedColor] = attr.Value
			hasColor = true
		case attr.Name == attributeSize && !hasSize:
			payload[FeedSize] = attr.Value
			hasSize = true
		}
	}

	switch {
	case hasColor && hasSize:
		payload[FeedVariationTheme] = VariationThemeSizeColor
	case hasColor:
		payload[FeedVariationTheme] = VariationThemeColor
	case hasSize:
		payload[FeedVariationTheme] = VariationThemeSize
	default:
		logger.Warn("No variation attribute found for create payload")
		return &Rejected{
			Reason: RejectNoVariationDimension,
			Detail: "variant has neither a Color nor a Size attribute",
		}
	}
	return &Built{Payload: payload}
}
