package tree

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/memmachine/memview/internal/memory"
)

// FetchFunc retrieves the raw memory payload for one panel.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Model is the tree model behind one memory panel. The top-level node
// list is replaced wholesale on every refresh; no node identity is
// preserved across refreshes.
type Model struct {
	scope   memory.Scope
	grouped bool
	fetch   FetchFunc
	logger  *zap.Logger

	mu      sync.Mutex
	loading bool
	nodes   []*Node
	gen     uint64

	changes chan struct{}

	// now is swapped out by tests.
	now func() time.Time
}

var _ Provider = (*Model)(nil)

// NewEpisodic creates the model for the episodic panel.
func NewEpisodic(fetch FetchFunc, logger *zap.Logger) *Model {
	return newModel(memory.ScopeEpisodic, false, fetch, logger)
}

// NewProfile creates the model for the profile panel. Top-level nodes
// are tag groups; records expand underneath them.
func NewProfile(fetch FetchFunc, logger *zap.Logger) *Model {
	return newModel(memory.ScopeProfile, true, fetch, logger)
}

func newModel(scope memory.Scope, grouped bool, fetch FetchFunc, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		scope:   scope,
		grouped: grouped,
		fetch:   fetch,
		logger:  logger.With(zap.String("panel", string(scope))),
		changes: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Changes delivers change notifications. The channel is buffered and
// collapsing: a pending notification means the next read observes the
// latest state, so sends from fetch completion never block.
func (m *Model) Changes() <-chan struct{} {
	return m.changes
}

// Loading reports whether a fetch is in flight.
func (m *Model) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Refresh fetches the panel's payload and replaces the node list. It
// never returns an error: failures are logged and rendered as an
// in-tree error node. Exactly two notifications bracket every call, one
// before the fetch (loading shown) and one after completion.
//
// Overlapping calls are not deduplicated; each issues its own fetch.
// Completions are generation-tagged and a stale fetch's result is
// discarded, so the newest refresh always wins.
func (m *Model) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.loading = true
	m.mu.Unlock()
	m.notify()

	payload, err := m.fetch(ctx)

	var nodes []*Node
	if err != nil {
		m.logger.Warn("memory fetch failed", zap.Error(err))
		nodes = []*Node{{
			Label:   "Failed to load memories",
			Content: errorContent,
			ID:      idError,
		}}
	} else {
		nodes = m.build(memory.Normalize(payload, m.scope))
	}

	m.mu.Lock()
	if gen == m.gen {
		m.nodes = nodes
		m.loading = false
	}
	m.mu.Unlock()
	m.notify()
}

// Children is a pure function of current state and the given node.
// Passing nil lists the top level: the state sentinel followed by the
// current nodes.
func (m *Model) Children(node *Node) []*Node {
	m.mu.Lock()
	defer m.mu.Unlock()

	if node == nil {
		top := make([]*Node, 0, len(m.nodes)+1)
		top = append(top, m.sentinelLocked())
		return append(top, m.nodes...)
	}
	if node.Detail || node.Sentinel() {
		return nil
	}
	if node.Kind == KindTagGroup {
		children := make([]*Node, 0, len(node.records))
		for _, rec := range node.records {
			children = append(children, recordNode(rec))
		}
		return children
	}
	return m.detailLeaves(node)
}

// sentinelLocked returns the affordance node for the current state.
func (m *Model) sentinelLocked() *Node {
	if m.loading {
		return &Node{Label: "Loading...", ID: SentinelLoading}
	}
	return &Node{Label: "Refresh", Content: "Fetch memories again", ID: SentinelRefresh}
}

// detailLeaves expands a record node into its attribute leaves. The
// timestamp leaf is computed fresh at call time, never stored.
func (m *Model) detailLeaves(node *Node) []*Node {
	var leaves []*Node
	if node.Content != "" && node.Content != errorContent {
		leaves = append(leaves, &Node{
			Label:   node.Content,
			Content: node.Content,
			ID:      node.ID + ":content",
			Detail:  true,
		})
	}
	leaves = append(leaves,
		&Node{
			Label:  "ID: " + node.ID,
			ID:     node.ID + ":id",
			Detail: true,
		},
		&Node{
			Label:  "Retrieved: " + m.now().Format(time.RFC3339),
			ID:     node.ID + ":timestamp",
			Detail: true,
		},
	)
	return leaves
}

// build turns normalized records into top-level nodes.
func (m *Model) build(records []memory.Record) []*Node {
	if len(records) == 0 {
		return []*Node{{Label: "No memories found", ID: idEmpty}}
	}
	if m.grouped {
		return buildTagGroups(records)
	}
	nodes := make([]*Node, 0, len(records))
	for _, rec := range records {
		nodes = append(nodes, recordNode(rec))
	}
	return nodes
}

// buildTagGroups partitions records by tag, preserving source order
// within each group. Groups are sorted by label, case-sensitive
// ascending.
func buildTagGroups(records []memory.Record) []*Node {
	groups := make(map[string][]memory.Record)
	for _, rec := range records {
		tag := rec.Tag
		if tag == "" {
			tag = "Uncategorized"
		}
		groups[tag] = append(groups[tag], rec)
	}

	tags := make([]string, 0, len(groups))
	for tag := range groups {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	nodes := make([]*Node, 0, len(tags))
	for _, tag := range tags {
		nodes = append(nodes, &Node{
			Label:   tag,
			ID:      "tag:" + tag,
			Kind:    KindTagGroup,
			records: groups[tag],
		})
	}
	return nodes
}

func recordNode(rec memory.Record) *Node {
	return &Node{
		Label:   rec.Title,
		Content: rec.Content,
		ID:      rec.ID,
	}
}

func (m *Model) notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}
