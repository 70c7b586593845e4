// Package tree implements the lazy hierarchical models behind the memory panels.
//
// Each panel owns a Model: a replaceable list of top-level nodes, a
// loading flag, and lazily produced children. Hosts render through the
// Provider interface and redraw on change notifications; nothing about
// a concrete UI leaks into this package.
package tree

import "github.com/memmachine/memview/internal/memory"

// Reserved node IDs. Exactly one of the two sentinels is always the
// first top-level element, depending on the loading flag.
const (
	SentinelRefresh = "refresh"
	SentinelLoading = "loading"

	idEmpty = "empty"
	idError = "error"
)

// errorContent marks a node produced by a failed fetch. Nodes carrying
// it get no content detail leaf.
const errorContent = "error"

// Kind distinguishes plain record nodes from tag-group nodes.
type Kind int

const (
	KindRecord Kind = iota
	KindTagGroup
)

// Node is one renderable row in a hierarchical panel.
type Node struct {
	// Label is the short row title.
	Label string

	// Content describes the record; may be long.
	Content string

	// ID identifies the node's source record, or is one of the
	// reserved sentinels.
	ID string

	// Detail is true for leaves that exist purely to show one
	// attribute of their parent record.
	Detail bool

	// Kind is KindTagGroup for synthetic grouping nodes (profile tree).
	Kind Kind

	// records is the held-out child list of a tag-group node.
	records []memory.Record
}

// Sentinel reports whether the node is the refresh or loading sentinel.
func (n *Node) Sentinel() bool {
	return n.ID == SentinelRefresh || n.ID == SentinelLoading
}

// Provider is the generic hierarchical display contract consumed by any
// embedding host. Children(nil) lists the top level.
type Provider interface {
	Children(node *Node) []*Node
	Changes() <-chan struct{}
}
