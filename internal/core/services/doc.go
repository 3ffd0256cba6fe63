// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Workbench owns workspaces, studies and the analytics log, and runs every
// mutation as a snapshot, apply, persist transaction against a StateStore.
// SuggestionService wraps an optional LLM with local heuristics.
package services
