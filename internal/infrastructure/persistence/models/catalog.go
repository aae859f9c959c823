package models

// ProductTemplateModel is the persistence model for product templates.
// Descriptive fields live on the template and are shared by its variants.
type ProductTemplateModel struct {
	CatalogModel
	Name              string  `gorm:"type:varchar(255);not null"`
	DefaultCode       *string `gorm:"type:varchar(64);index"`
	DescriptionSale   *string `gorm:"type:text"`
	AmazonDescription *string `gorm:"type:text"`
	ProductBrand      *string `gorm:"type:varchar(128)"`
	BulletPoint1      *string `gorm:"type:varchar(500)"`
	BulletPoint2      *string `gorm:"type:varchar(500)"`
	BulletPoint3      *string `gorm:"type:varchar(500)"`
	BulletPoint4      *string `gorm:"type:varchar(500)"`
	BulletPoint5      *string `gorm:"type:varchar(500)"`
	AmazonSyncActive  bool    `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductTemplateModel) TableName() string {
	return "product_templates"
}

// BulletPoints returns the five bullet point columns in field order
func (m *ProductTemplateModel) BulletPoints() [5]*string {
	return [5]*string{m.BulletPoint1, m.BulletPoint2, m.BulletPoint3, m.BulletPoint4, m.BulletPoint5}
}

// ProductVariantModel is the persistence model for product variants
type ProductVariantModel struct {
	CatalogModel
	TemplateID       int64   `gorm:"not null;index:idx_product_variant_template"`
	DefaultCode      *string `gorm:"type:varchar(64);index"`
	AmazonSyncActive bool    `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ProductAttributeModel is an attribute such as Color or Size
type ProductAttributeModel struct {
	CatalogModel
	Name string `gorm:"type:varchar(128);not null"`
}

// TableName returns the table name for GORM
func (ProductAttributeModel) TableName() string {
	return "product_attributes"
}

// ProductAttributeValueModel is one value of an attribute, e.g. Red
type ProductAttributeValueModel struct {
	CatalogModel
	AttributeID int64  `gorm:"not null;index"`
	Name        string `gorm:"type:varchar(128);not null"`
}

// TableName returns the table name for GORM
func (ProductAttributeValueModel) TableName() string {
	return "product_attribute_values"
}

// ProductVariantAttributeValueModel links a variant to an attribute value.
// Sequence preserves the stored order of a variant's values.
type ProductVariantAttributeValueModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	VariantID int64 `gorm:"not null;index:idx_variant_attribute_value_variant,priority:1"`
	ValueID   int64 `gorm:"not null"`
	Sequence  int   `gorm:"not null;default:0;index:idx_variant_attribute_value_variant,priority:2"`
}

// TableName returns the table name for GORM
func (ProductVariantAttributeValueModel) TableName() string {
	return "product_variant_attribute_values"
}

// ProductAttributeLineModel declares an attribute distinguishing a template's variants
type ProductAttributeLineModel struct {
	CatalogModel
	TemplateID  int64 `gorm:"not null;index:idx_attribute_line_template,priority:1"`
	AttributeID int64 `gorm:"not null"`
	Sequence    int   `gorm:"not null;default:0;index:idx_attribute_line_template,priority:2"`
}

// TableName returns the table name for GORM
func (ProductAttributeLineModel) TableName() string {
	return "product_attribute_lines"
}
