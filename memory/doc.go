// Package memory implements the semantic memory store: a flat inner-product
// vector index paired with a metadata table, persisted through the storage
// package.
//
// Design constraints the rest of the system leans on:
//   - Index positions are append-only and stable for the lifetime of a store;
//     the metadata table maps positions to mem_<n> ids.
//   - Deletion is a tombstone in the metadata table. Vectors are never removed
//     from the index, so surviving positions never shift.
//   - Every mutation re-persists the full state. Persistence failures are
//     logged and swallowed; the in-memory store stays authoritative.
//   - Reopening a store with missing, unreadable or mutually inconsistent
//     artifacts starts empty rather than guessing.
//
// Embedding happens outside the store lock, so slow providers block neither
// readers nor other writers.
package memory
