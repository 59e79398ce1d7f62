// Package store persists published forms. Each record carries a UUID, a
// short sqids id used in public links, and the schema that was published.
// MemoryStore serves tests and one-off runs; DirStore keeps one JSON file per
// form.
package store
