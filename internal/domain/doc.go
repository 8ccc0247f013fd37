// Package domain holds the commerce entities, their self-validating value
// objects and the repository contracts the use cases depend on.
//
// Customer and Product are mutable records edited through setters. Sale is
// a read-only snapshot built once by the register-sale workflow or by the
// read-side join, and its total is always recomputed from its lines.
package domain
