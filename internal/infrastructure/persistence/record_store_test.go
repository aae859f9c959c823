package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/marketsync/internal/domain/integration"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormRecordStore_LookupTemplate(t *testing.T) {
	db := setupTestDB(t)
	seed := newCatalogSeed(t, db)
	ctx := context.Background()

	tmplID := seed.template("Classic Tee", " TEE ", func(m *models.ProductTemplateModel) {
		m.ProductBrand = strPtr("Acme")
		m.BulletPoint2 = strPtr("Great fit")
		m.AmazonSyncActive = true
	})
	v1 := seed.variant(tmplID, strPtr("TEE-S"), false, "Size", "S")
	v2 := seed.variant(tmplID, strPtr("TEE-M"), true, "Size", "M")
	seed.attributeLine(tmplID, "Color", 2)
	seed.attributeLine(tmplID, "Size", 1)

	store := NewGormRecordStore(db)
	rec, err := store.Lookup(ctx, integration.ModelProductTemplate, tmplID)
	require.NoError(t, err)

	assert.Equal(t, integration.ModelProductTemplate, rec.ModelName())
	assert.Equal(t, tmplID, rec.RecordID())
	assert.False(t, rec.Bool(integration.FieldIsProductVariant))
	assert.Equal(t, 2, rec.Int(integration.FieldProductVariantCount))

	name, ok := rec.String(integration.FieldDisplayName)
	assert.True(t, ok)
	assert.Equal(t, "Classic Tee", name)

	_, ok = rec.String(integration.FieldAmazonDescription)
	assert.False(t, ok, "null columns stay null")

	variants := rec.Records(integration.FieldProductVariantIDs)
	require.Len(t, variants, 2)
	assert.Equal(t, v1, variants[0].RecordID())
	assert.Equal(t, v2, variants[1].RecordID())

	c := integration.NewProductClassifier(store)
	assert.Equal(t, integration.KindMultiVariantTemplate, c.Classify(rec))
	assert.True(t, c.IsSyncActive(rec))
	assert.Equal(t, []string{"Size", "Color"}, c.TemplateAttributeNames(rec))
	assert.Equal(t, []string{"Great fit"}, c.BulletPoints(rec))
	sku, ok := c.SKU(rec)
	assert.True(t, ok)
	assert.Equal(t, "TEE", sku)
}

func TestGormRecordStore_LookupVariant(t *testing.T) {
	db := setupTestDB(t)
	seed := newCatalogSeed(t, db)
	ctx := context.Background()

	tmplID := seed.template("Classic Tee", "TEE", func(m *models.ProductTemplateModel) {
		m.AmazonDescription = strPtr("Marketplace copy")
	})
	variantID := seed.variant(tmplID, strPtr(" TEE-RED-M "), true, "Color", "Red", "Size", "M", "Color", "Blue")
	seed.variant(tmplID, nil, false)

	store := NewGormRecordStore(db)
	rec, err := store.Lookup(ctx, integration.ModelProductVariant, variantID)
	require.NoError(t, err)

	c := integration.NewProductClassifier(store)
	assert.Equal(t, integration.KindIndependentVariant, c.Classify(rec))
	assert.Equal(t, []integration.VariantAttribute{
		{Name: "Color", Value: "Red"},
		{Name: "Size", Value: "M"},
		{Name: "Color", Value: "Blue"},
	}, c.VariantAttributes(rec))

	sku, ok := c.SKU(rec)
	assert.True(t, ok)
	assert.Equal(t, "TEE-RED-M", sku)
	tmplSKU, ok := c.TemplateSKU(rec)
	assert.True(t, ok)
	assert.Equal(t, "TEE", tmplSKU)

	desc, ok := rec.String(integration.FieldAmazonDescription)
	assert.True(t, ok, "descriptive fields come from the template")
	assert.Equal(t, "Marketplace copy", desc)

	builder := integration.NewCreatePayloadBuilder(c)
	result, err := builder.Build(ctx, integration.NewCreateOperation(integration.SyncHead{
		ModelName: integration.ModelProductVariant,
		RecordID:  variantID,
	}))
	require.NoError(t, err)
	built, ok := result.(*integration.Built)
	require.True(t, ok)
	assert.Equal(t, integration.VariationThemeSizeColor, built.Payload[integration.FeedVariationTheme])
	assert.Equal(t, "Red", built.Payload[integration.FeedColor])
	assert.Equal(t, integration.ParentageChild, built.Payload[integration.FeedParentage])
}

func TestGormRecordStore_PartialVariantAndNullSKU(t *testing.T) {
	db := setupTestDB(t)
	seed := newCatalogSeed(t, db)

	tmplID := seed.template("Classic Tee", "TEE")
	variantID := seed.variant(tmplID, nil, true)

	store := NewGormRecordStore(db)
	rec, err := store.Lookup(context.Background(), integration.ModelProductVariant, variantID)
	require.NoError(t, err)

	c := integration.NewProductClassifier(store)
	assert.True(t, c.IsPartialVariant(rec))
	_, ok := c.SKU(rec)
	assert.False(t, ok)
}

func TestGormRecordStore_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormRecordStore(db)
	ctx := context.Background()

	_, err := store.Lookup(ctx, integration.ModelProductVariant, 404)
	assert.ErrorIs(t, err, integration.ErrRecordNotFound)

	_, err = store.Lookup(ctx, integration.ModelProductTemplate, 404)
	assert.ErrorIs(t, err, integration.ErrRecordNotFound)

	_, err = store.Lookup(ctx, "res.partner", 1)
	assert.ErrorIs(t, err, integration.ErrInvalidSyncHead)
}

func TestGormRecordStore_DanglingTemplateIsNotNotFound(t *testing.T) {
	db := setupTestDB(t)
	variant := &models.ProductVariantModel{TemplateID: 999, DefaultCode: strPtr("ORPHAN")}
	require.NoError(t, db.Create(variant).Error)

	_, err := NewGormRecordStore(db).Lookup(context.Background(), integration.ModelProductVariant, variant.ID)
	require.Error(t, err)
	assert.False(t, errors.Is(err, integration.ErrRecordNotFound))
}

func TestGormRecordStore_QueryFailure(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "product_templates"`)).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := NewGormRecordStore(db).Lookup(context.Background(), integration.ModelProductTemplate, 1)

	require.Error(t, err)
	assert.False(t, errors.Is(err, integration.ErrRecordNotFound))
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRecordStore_QueryNoRows(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "product_variants"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "template_id"}))
	mock.ExpectRollback()

	_, err := NewGormRecordStore(db).Lookup(context.Background(), integration.ModelProductVariant, 1)

	assert.ErrorIs(t, err, integration.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
