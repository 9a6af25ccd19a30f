// Package domain contains the core domain entities and value objects for rowship.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Row]: A single logged record for one entity at one time point
//   - [Table]: An ordered, immutable batch of rows sealed under one identifier
//   - [RowID] / [TableID]: Creation-ordered and random identifiers
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
