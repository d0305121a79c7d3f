// Package chronicle builds deterministic, chronologically ordered
// timelines from directed media relationship graphs.
//
// Given a root identifier, the engine discovers every transitively
// related record through an injected relationship store, tolerates
// cycles in the relationship graph, and assembles a timeline with
// stable 1-based positions and a main-timeline classification.
//
// The engine is read-only: ingestion, persistence, and caching of the
// assembled timelines belong to collaborators layered on top (see
// pkg/cache and pkg/server).
package chronicle
