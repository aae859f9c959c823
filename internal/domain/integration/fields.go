package integration

import "strconv"

// ModelName identifies the catalog table a record lives in
type ModelName string

const (
	// ModelProductVariant is the table of concrete, sellable variants
	ModelProductVariant ModelName = "product.product"
	// ModelProductTemplate is the table of templates grouping variants
	ModelProductTemplate ModelName = "product.template"
)

// IsValid returns true if the model name is one this context can resolve
func (m ModelName) IsValid() bool {
	switch m {
	case ModelProductVariant, ModelProductTemplate:
		return true
	default:
		return false
	}
}

// String returns the string representation of ModelName
func (m ModelName) String() string {
	return string(m)
}

// FieldName is a record field known to both this context and the store schema.
type FieldName string

// Field names consulted on catalog records.
const (
	FieldDisplayName         FieldName = "name"
	FieldIsProductVariant    FieldName = "is_product_variant"
	FieldAttributeValueIDs   FieldName = "attribute_value_ids"
	FieldProductVariantCount FieldName = "product_variant_count"
	FieldProductVariantIDs   FieldName = "product_variant_ids"
	FieldAmazonSyncActive    FieldName = "amazon_sync_active"
	FieldSKU                 FieldName = "default_code"
	FieldProductTemplateID   FieldName = "product_tmpl_id"
	FieldDescriptionSale     FieldName = "description_sale"
	FieldAmazonDescription   FieldName = "amazon_description"
	FieldProductBrand        FieldName = "product_brand"
	FieldAttributeLineIDs    FieldName = "attribute_line_ids"
	FieldAttributeID         FieldName = "attribute_id"
)

// BulletPointCount is the number of bullet point fields on a product
const BulletPointCount = 5

const bulletPointPrefix = "bullet_point_"

// BulletPointField returns the field name of the index-th bullet point (1-indexed).
func BulletPointField(index int) FieldName {
	return FieldName(bulletPointPrefix + strconv.Itoa(index))
}

// Related tables reached through relations only; they are not valid sync heads.
const (
	ModelProductAttribute      ModelName = "product.attribute"
	ModelProductAttributeValue ModelName = "product.attribute.value"
	ModelProductAttributeLine  ModelName = "product.template.attribute.line"
)
