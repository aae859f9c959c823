package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRecordStore implements integration.RecordStore over the catalog tables.
//
// A lookup loads the whole template graph of the record (template, variants,
// attribute values and attribute lines) inside one transaction, so the
// returned FieldSource is a consistent snapshot. Descriptive fields are stored
// on the template and shared by its variants.
type GormRecordStore struct {
	db *gorm.DB
}

// NewGormRecordStore creates a new GormRecordStore
func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

// Lookup implements integration.RecordStore
func (s *GormRecordStore) Lookup(ctx context.Context, model integration.ModelName, recordID int64) (integration.FieldSource, error) {
	var result *catalogRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch model {
		case integration.ModelProductTemplate:
			var graph *templateGraph
			graph, err = loadTemplateGraph(tx, recordID)
			if graph != nil {
				result = graph.template
			}
		case integration.ModelProductVariant:
			result, err = loadVariant(tx, recordID)
		default:
			err = fmt.Errorf("%w: unknown model %q", integration.ErrInvalidSyncHead, model)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// templateGraph is a template record together with its variants by id
type templateGraph struct {
	template *catalogRecord
	variants map[int64]*catalogRecord
}

func loadVariant(tx *gorm.DB, variantID int64) (*catalogRecord, error) {
	var variant models.ProductVariantModel
	if err := tx.First(&variant, variantID).Error; err != nil {
		return nil, notFound(err, integration.ModelProductVariant, variantID)
	}

	graph, err := loadTemplateGraph(tx, variant.TemplateID)
	if err != nil {
		// a variant without its template is corrupt data, not a deleted record
		if errors.Is(err, integration.ErrRecordNotFound) {
			return nil, fmt.Errorf("variant %d references missing template %d", variantID, variant.TemplateID)
		}
		return nil, err
	}
	return graph.variants[variantID], nil
}

func loadTemplateGraph(tx *gorm.DB, templateID int64) (*templateGraph, error) {
	var tmpl models.ProductTemplateModel
	if err := tx.First(&tmpl, templateID).Error; err != nil {
		return nil, notFound(err, integration.ModelProductTemplate, templateID)
	}

	var variants []models.ProductVariantModel
	if err := tx.Where("template_id = ?", templateID).Order("id ASC").Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to load variants of template %d: %w", templateID, err)
	}

	var lines []models.ProductAttributeLineModel
	if err := tx.Where("template_id = ?", templateID).Order("sequence ASC, id ASC").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load attribute lines of template %d: %w", templateID, err)
	}

	variantIDs := make([]int64, len(variants))
	for i, v := range variants {
		variantIDs[i] = v.ID
	}
	valuesByVariant, attributeIDs, err := loadVariantValues(tx, variantIDs)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		attributeIDs = append(attributeIDs, line.AttributeID)
	}
	attributes, err := loadAttributes(tx, attributeIDs)
	if err != nil {
		return nil, err
	}

	template := newCatalogRecord(integration.ModelProductTemplate, tmpl.ID)
	setSharedFields(template, &tmpl)
	template.bools[integration.FieldIsProductVariant] = false
	template.bools[integration.FieldAmazonSyncActive] = tmpl.AmazonSyncActive
	template.setText(integration.FieldSKU, tmpl.DefaultCode)
	template.ints[integration.FieldProductVariantCount] = len(variants)

	for _, line := range lines {
		rec := newCatalogRecord(integration.ModelProductAttributeLine, line.ID)
		if attr := attributes[line.AttributeID]; attr != nil {
			rec.refs[integration.FieldAttributeID] = attr
		}
		template.lists[integration.FieldAttributeLineIDs] = append(template.lists[integration.FieldAttributeLineIDs], rec)
	}

	graph := &templateGraph{template: template, variants: make(map[int64]*catalogRecord, len(variants))}
	for _, v := range variants {
		rec := newCatalogRecord(integration.ModelProductVariant, v.ID)
		setSharedFields(rec, &tmpl)
		rec.bools[integration.FieldIsProductVariant] = true
		rec.bools[integration.FieldAmazonSyncActive] = v.AmazonSyncActive
		rec.setText(integration.FieldSKU, v.DefaultCode)
		rec.ints[integration.FieldProductVariantCount] = len(variants)
		rec.refs[integration.FieldProductTemplateID] = template

		for _, value := range valuesByVariant[v.ID] {
			valueRec := newCatalogRecord(integration.ModelProductAttributeValue, value.ID)
			name := value.Name
			valueRec.strs[integration.FieldDisplayName] = &name
			if attr := attributes[value.AttributeID]; attr != nil {
				valueRec.refs[integration.FieldAttributeID] = attr
			}
			rec.lists[integration.FieldAttributeValueIDs] = append(rec.lists[integration.FieldAttributeValueIDs], valueRec)
		}

		template.lists[integration.FieldProductVariantIDs] = append(template.lists[integration.FieldProductVariantIDs], rec)
		graph.variants[v.ID] = rec
	}
	return graph, nil
}

// loadVariantValues returns each variant's attribute values in stored order
// and the ids of the attributes they belong to
func loadVariantValues(tx *gorm.DB, variantIDs []int64) (map[int64][]models.ProductAttributeValueModel, []int64, error) {
	result := make(map[int64][]models.ProductAttributeValueModel)
	if len(variantIDs) == 0 {
		return result, nil, nil
	}

	var links []models.ProductVariantAttributeValueModel
	if err := tx.Where("variant_id IN ?", variantIDs).
		Order("variant_id ASC, sequence ASC, id ASC").
		Find(&links).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load variant attribute values: %w", err)
	}
	if len(links) == 0 {
		return result, nil, nil
	}

	valueIDs := make([]int64, 0, len(links))
	for _, link := range links {
		valueIDs = append(valueIDs, link.ValueID)
	}
	var values []models.ProductAttributeValueModel
	if err := tx.Where("id IN ?", valueIDs).Find(&values).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load attribute values: %w", err)
	}
	byID := make(map[int64]models.ProductAttributeValueModel, len(values))
	attributeIDs := make([]int64, 0, len(values))
	for _, v := range values {
		byID[v.ID] = v
		attributeIDs = append(attributeIDs, v.AttributeID)
	}

	for _, link := range links {
		if value, ok := byID[link.ValueID]; ok {
			result[link.VariantID] = append(result[link.VariantID], value)
		}
	}
	return result, attributeIDs, nil
}

func loadAttributes(tx *gorm.DB, attributeIDs []int64) (map[int64]*catalogRecord, error) {
	result := make(map[int64]*catalogRecord)
	if len(attributeIDs) == 0 {
		return result, nil
	}

	var attributes []models.ProductAttributeModel
	if err := tx.Where("id IN ?", attributeIDs).Find(&attributes).Error; err != nil {
		return nil, fmt.Errorf("failed to load attributes: %w", err)
	}
	for _, a := range attributes {
		rec := newCatalogRecord(integration.ModelProductAttribute, a.ID)
		name := a.Name
		rec.strs[integration.FieldDisplayName] = &name
		result[a.ID] = rec
	}
	return result, nil
}

// setSharedFields copies the template's descriptive columns onto a record
func setSharedFields(rec *catalogRecord, tmpl *models.ProductTemplateModel) {
	name := tmpl.Name
	rec.strs[integration.FieldDisplayName] = &name
	rec.setText(integration.FieldDescriptionSale, tmpl.DescriptionSale)
	rec.setText(integration.FieldAmazonDescription, tmpl.AmazonDescription)
	rec.setText(integration.FieldProductBrand, tmpl.ProductBrand)
	for i, bullet := range tmpl.BulletPoints() {
		rec.setText(integration.BulletPointField(i+1), bullet)
	}
}

// notFound maps gorm.ErrRecordNotFound to integration.ErrRecordNotFound
func notFound(err error, model integration.ModelName, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s,%d", integration.ErrRecordNotFound, model, id)
	}
	return fmt.Errorf("failed to load %s,%d: %w", model, id, err)
}

var _ integration.RecordStore = (*GormRecordStore)(nil)
