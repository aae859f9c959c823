// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain types to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence models (BaseModel, CatalogModel)
// - catalog.go: Catalog tables read by the listing sync (templates, variants, attributes)
// - integration.go: Sync operation queue and feed outbox
package models
