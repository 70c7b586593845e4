package tui

import (
	"strings"

	"github.com/memmachine/memview/internal/tree"
)

// row is one visible line in a panel: a node at an indent depth.
type row struct {
	node  *tree.Node
	depth int
}

// panel is the view state over one tree provider. Expansion is keyed by
// node ID, so it survives the wholesale node replacement a refresh does.
type panel struct {
	title    string
	provider tree.Provider
	expanded map[string]bool
	cursor   int
	rows     []row
}

func newPanel(title string, provider tree.Provider) *panel {
	p := &panel{
		title:    title,
		provider: provider,
		expanded: make(map[string]bool),
	}
	p.rebuild()
	return p
}

// rebuild re-flattens the tree into visible rows.
func (p *panel) rebuild() {
	p.rows = p.rows[:0]
	p.walk(nil, 0)
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *panel) walk(node *tree.Node, depth int) {
	for _, child := range p.provider.Children(node) {
		p.rows = append(p.rows, row{node: child, depth: depth})
		if p.expandable(child) && p.expanded[child.ID] {
			p.walk(child, depth+1)
		}
	}
}

func (p *panel) expandable(n *tree.Node) bool {
	return !n.Detail && !n.Sentinel()
}

func (p *panel) moveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *panel) moveDown() {
	if p.cursor < len(p.rows)-1 {
		p.cursor++
	}
}

// toggle flips expansion under the cursor and returns the node, so the
// caller can treat the refresh sentinel as an action.
func (p *panel) toggle() *tree.Node {
	if p.cursor >= len(p.rows) {
		return nil
	}
	node := p.rows[p.cursor].node
	if p.expandable(node) {
		p.expanded[node.ID] = !p.expanded[node.ID]
		p.rebuild()
	}
	return node
}

// render draws the panel body at the given inner width.
func (p *panel) render(width int, focused bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.title))
	b.WriteString("\n")

	for i, r := range p.rows {
		line := strings.Repeat("  ", r.depth) + marker(p, r.node) + r.node.Label
		line = truncate(line, width)

		switch {
		case focused && i == p.cursor:
			line = cursorStyle.Render(line)
		case r.node.Sentinel():
			line = sentinelStyle.Render(line)
		case r.node.Kind == tree.KindTagGroup:
			line = tagGroupStyle.Render(line)
		case r.node.Content == "error":
			line = errorStyle.Render(line)
		case r.node.Detail:
			line = detailStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	style := panelStyle
	if focused {
		style = focusedPanelStyle
	}
	return style.Width(width + 2).Render(b.String())
}

func marker(p *panel, n *tree.Node) string {
	if !p.expandable(n) {
		return "  "
	}
	if p.expanded[n.ID] {
		return "▾ "
	}
	return "▸ "
}

// truncate cuts a line to width runes with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
