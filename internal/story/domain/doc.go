// Package domain defines the story graph value types: nodes, choices,
// branch metadata, player progress, missions, and characters.
//
// The story graph is a shared, append-only tree per story. Nodes are
// immutable once committed; players hold only an index (a node id) into
// the tree, never a private copy of it.
package domain
