// Package storage provides the durable blob store backing semantic memory
// persistence.
//
// The Store interface is deliberately small: named blobs with Save / Load /
// Delete / List. The memory layer owns artifact naming and encoding; this
// package only guarantees that a saved blob is either fully visible under its
// name or not visible at all. FileStore achieves that with write-to-temp plus
// atomic rename, so a crash mid-write can never leave a torn artifact under
// the final name. InMemoryStore serves tests and single-process prototypes.
//
// Callers should depend on the Store interface rather than concrete types so
// they can substitute alternative persistence layers in tests or production.
package storage
