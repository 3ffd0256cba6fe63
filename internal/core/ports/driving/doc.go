// Package driving defines interfaces that external actors (CLI, MCP) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// Study-scoped operations take a study id; an empty id selects the active
// study and fails with domain.ErrNoActiveStudy when there is none.
//
// Implementations of these interfaces live in internal/core/services.
package driving
