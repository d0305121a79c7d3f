// Package types defines the core data model shared by every chronicle
// component: media records, directed relationship edges, traversal
// results, and assembled timelines.
//
// All structures here are plain values. Records and edges are owned by
// the ingestion collaborator and are read-only from the engine's
// perspective; traversal results and timelines are constructed fresh
// per call and carry no persistent identity.
package types
