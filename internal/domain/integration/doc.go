// Package integration contains the marketplace Integration bounded context.
// This context decides which catalog records may be published to a marketplace
// and derives the "create" feed entry for each of them.
//
// Key concepts:
//   - FieldSource: Port giving typed, read-only access to one catalog record
//   - RecordStore: Port resolving a SyncHead (model + record ID) to a FieldSource
//   - ProductClassifier: Stateless queries (variant/template kind, SKU, attributes, sync activation)
//   - CreatePayloadBuilder: Derives a create-feed Payload or a Rejected outcome
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
