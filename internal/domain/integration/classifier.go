package integration

import (
	"context"
	"strconv"
	"strings"
)

// ParentSKUPrefix starts the SKU derived for a multi-variant template that has none
const ParentSKUPrefix = "TMPL-"

// ---------------------------------------------------------------------------
// ProductKind
// ---------------------------------------------------------------------------

// ProductKind is the sync classification of a catalog record. Every record has
// exactly one kind.
type ProductKind string

const (
	// KindIndependentVariant is a variant carrying attribute values
	KindIndependentVariant ProductKind = "INDEPENDENT_VARIANT"
	// KindPartialVariant is a variant without attribute values (a placeholder)
	KindPartialVariant ProductKind = "PARTIAL_VARIANT"
	// KindSingleVariantTemplate is a template with at most one variant
	KindSingleVariantTemplate ProductKind = "SINGLE_VARIANT_TEMPLATE"
	// KindMultiVariantTemplate is a template grouping more than one variant
	KindMultiVariantTemplate ProductKind = "MULTI_VARIANT_TEMPLATE"
)

// String returns the string representation of ProductKind
func (k ProductKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// ProductClassifier
// ---------------------------------------------------------------------------

// ProductClassifier answers identity, relationship and activation questions
// about catalog records. It holds no mutable state and never writes to the store.
type ProductClassifier struct {
	store RecordStore
}

// NewProductClassifier creates a new ProductClassifier
func NewProductClassifier(store RecordStore) *ProductClassifier {
	return &ProductClassifier{store: store}
}

// Resolve looks up the record a sync head points at
func (c *ProductClassifier) Resolve(ctx context.Context, head SyncHead) (FieldSource, error) {
	if err := head.Validate(); err != nil {
		return nil, err
	}
	return c.store.Lookup(ctx, head.ModelName, head.RecordID)
}

// IsVariant returns true for a concrete variant, false for a template
func (c *ProductClassifier) IsVariant(product FieldSource) bool {
	return product.Bool(FieldIsProductVariant)
}

// IsPartialVariant returns true for a variant without attribute values
func (c *ProductClassifier) IsPartialVariant(product FieldSource) bool {
	if !c.IsVariant(product) {
		return false
	}
	return len(product.Records(FieldAttributeValueIDs)) == 0
}

// IsMultiVariantTemplate returns true for a template with more than one variant
func (c *ProductClassifier) IsMultiVariantTemplate(product FieldSource) bool {
	if c.IsVariant(product) {
		return false
	}
	return product.Int(FieldProductVariantCount) > 1
}

// Classify returns the kind of a record
func (c *ProductClassifier) Classify(product FieldSource) ProductKind {
	switch {
	case c.IsPartialVariant(product):
		return KindPartialVariant
	case c.IsVariant(product):
		return KindIndependentVariant
	case c.IsMultiVariantTemplate(product):
		return KindMultiVariantTemplate
	default:
		return KindSingleVariantTemplate
	}
}

// NeedsSkipping returns true when the head points at a partial variant or a
// multi-variant template. Neither can be synced directly as-is.
func (c *ProductClassifier) NeedsSkipping(ctx context.Context, head SyncHead) (bool, error) {
	product, err := c.Resolve(ctx, head)
	if err != nil {
		return false, err
	}
	return c.RecordNeedsSkipping(product), nil
}

// RecordNeedsSkipping is NeedsSkipping for an already resolved record
func (c *ProductClassifier) RecordNeedsSkipping(product FieldSource) bool {
	return c.IsPartialVariant(product) || c.IsMultiVariantTemplate(product)
}

// IsSyncActive returns the effective sync flag. A multi-variant template is
// active if any of its variants is.
func (c *ProductClassifier) IsSyncActive(product FieldSource) bool {
	if !c.IsMultiVariantTemplate(product) {
		return product.Bool(FieldAmazonSyncActive)
	}
	for _, variant := range product.Records(FieldProductVariantIDs) {
		if variant.Bool(FieldAmazonSyncActive) {
			return true
		}
	}
	return false
}

// SKU returns the trimmed SKU. A null SKU yields ok=false; an empty one is
// returned as is.
func (c *ProductClassifier) SKU(product FieldSource) (string, bool) {
	sku, ok := product.String(FieldSKU)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(sku), true
}

// ParentSKU returns the SKU of a multi-variant template's parent listing:
// the stored SKU, or one derived from the record ID when that is blank.
func (c *ProductClassifier) ParentSKU(product FieldSource) string {
	if sku, ok := c.SKU(product); ok && sku != "" {
		return sku
	}
	return ParentSKUPrefix + strconv.FormatInt(product.RecordID(), 10)
}

// TemplateSKU returns the SKU of a variant's template
func (c *ProductClassifier) TemplateSKU(product FieldSource) (string, bool) {
	template, ok := product.Record(FieldProductTemplateID)
	if !ok {
		return "", false
	}
	return c.SKU(template)
}

// VariantAttributes returns one (attribute, value) pair per attribute value of
// a variant, in stored order.
func (c *ProductClassifier) VariantAttributes(product FieldSource) []VariantAttribute {
	values := product.Records(FieldAttributeValueIDs)
	result := make([]VariantAttribute, 0, len(values))
	for _, value := range values {
		result = append(result, VariantAttribute{
			Name:  attributeName(value),
			Value: sharedName(value),
		})
	}
	return result
}

// TemplateAttributeNames returns the attribute names declared on a template's
// attribute lines, in declaration order.
func (c *ProductClassifier) TemplateAttributeNames(template FieldSource) []string {
	lines := template.Records(FieldAttributeLineIDs)
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		result = append(result, attributeName(line))
	}
	return result
}

// BulletPoints returns the non-blank bullet points, trimmed, in field order
func (c *ProductClassifier) BulletPoints(product FieldSource) []string {
	result := make([]string, 0, BulletPointCount)
	for index := 1; index <= BulletPointCount; index++ {
		bullet, ok := product.String(BulletPointField(index))
		if !ok {
			continue
		}
		if bullet = strings.TrimSpace(bullet); bullet != "" {
			result = append(result, bullet)
		}
	}
	return result
}

func sharedName(record FieldSource) string {
	name, _ := record.String(FieldDisplayName)
	return name
}

// attributeName reads attribute_id.name from an attribute value or attribute line
func attributeName(record FieldSource) string {
	attribute, ok := record.Record(FieldAttributeID)
	if !ok {
		return ""
	}
	return sharedName(attribute)
}
