// Package stage is the composition root for the stage library.
//
// A Collection keeps pending adds, updates and removes for one kind of
// entity in memory and writes them to its Adapter only on Flush. A Session
// groups collections so their changes are committed, or discarded, together.
//
// Features:
//
//   - **Staged Writes**: Add, Update and Remove only touch the in-memory cache until Flush.
//   - **Hook Pipeline**: before/after hooks per operation and a beforeValidate, validate, afterValidate chain.
//   - **Concurrent Flush**: keys and collections are persisted concurrently; one failure does not stop the rest.
//   - **Pluggable Storage**: any core.Adapter; filesystem (YAML, JSON, Markdown) and in-memory adapters are included.
//   - **Typed Access**: `NewTyped[T]` converts between structs and Data.
//
// Usage:
//
//	s, err := stage.Open(stage.WithConfigFile("stage.yaml"))
//
//	users, err := s.Repository("users")
//	_, err = users.Add(ctx, "u1", stage.Data{"name": "Ann"})
//
//	results, err := s.Commit(ctx)
package stage
