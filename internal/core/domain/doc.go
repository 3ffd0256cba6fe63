// Package domain defines the core business entities for codebook.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An imported text document
//   - Excerpt: A coded span of document text
//   - Code: A label in the three-level code hierarchy
//   - Theme: A grouping of related codes
//   - Memo: A free-text annotation on a document, excerpt, code or theme
//   - Study: A research project owning all of the above
//   - Workspace: A shareable container of studies and collaborators
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
