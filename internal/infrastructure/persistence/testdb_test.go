package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ProductTemplateModel{},
		&models.ProductVariantModel{},
		&models.ProductAttributeModel{},
		&models.ProductAttributeValueModel{},
		&models.ProductVariantAttributeValueModel{},
		&models.ProductAttributeLineModel{},
		&models.SyncOperationModel{},
		&models.FeedEntryModel{},
	))
	return db
}

// setupMockDB creates a GORM connection backed by sqlmock
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

// catalogSeed writes catalog fixtures
type catalogSeed struct {
	t          *testing.T
	db         *gorm.DB
	attributes map[string]int64
}

func newCatalogSeed(t *testing.T, db *gorm.DB) *catalogSeed {
	return &catalogSeed{t: t, db: db, attributes: map[string]int64{}}
}

func strPtr(s string) *string { return &s }

func (s *catalogSeed) template(name, sku string, mutate ...func(*models.ProductTemplateModel)) int64 {
	s.t.Helper()
	m := &models.ProductTemplateModel{
		Name:            name,
		DefaultCode:     strPtr(sku),
		DescriptionSale: strPtr("Soft cotton tee"),
	}
	for _, fn := range mutate {
		fn(m)
	}
	require.NoError(s.t, s.db.Create(m).Error)
	return m.ID
}

func (s *catalogSeed) attribute(name string) int64 {
	s.t.Helper()
	if id, ok := s.attributes[name]; ok {
		return id
	}
	m := &models.ProductAttributeModel{Name: name}
	require.NoError(s.t, s.db.Create(m).Error)
	s.attributes[name] = m.ID
	return m.ID
}

// variant creates a variant whose values are given as attribute, value pairs
func (s *catalogSeed) variant(templateID int64, sku *string, active bool, pairs ...string) int64 {
	s.t.Helper()
	m := &models.ProductVariantModel{TemplateID: templateID, DefaultCode: sku, AmazonSyncActive: active}
	require.NoError(s.t, s.db.Create(m).Error)

	for i := 0; i+1 < len(pairs); i += 2 {
		value := &models.ProductAttributeValueModel{AttributeID: s.attribute(pairs[i]), Name: pairs[i+1]}
		require.NoError(s.t, s.db.Create(value).Error)
		link := &models.ProductVariantAttributeValueModel{VariantID: m.ID, ValueID: value.ID, Sequence: i / 2}
		require.NoError(s.t, s.db.Create(link).Error)
	}
	return m.ID
}

func (s *catalogSeed) attributeLine(templateID int64, attribute string, sequence int) {
	s.t.Helper()
	line := &models.ProductAttributeLineModel{TemplateID: templateID, AttributeID: s.attribute(attribute), Sequence: sequence}
	require.NoError(s.t, s.db.Create(line).Error)
}
