// Package memory extracts memory records from loosely-shaped backend payloads.
//
// The MemMachine API does not guarantee a fixed response schema, so
// extraction is a prioritized probe over known container and field
// synonyms that degrades gracefully instead of failing.
package memory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Scope selects which domain-specific container key is probed.
type Scope string

const (
	ScopeEpisodic Scope = "episodic"
	ScopeProfile  Scope = "profile"
)

// containerKey returns the scope-specific container key.
func (s Scope) containerKey() string {
	if s == ScopeProfile {
		return "profile_memory"
	}
	return "episodic_memory"
}

// Record is one normalized memory record.
type Record struct {
	Title   string
	Content string
	ID      string

	// Tag is the record's own tag field, empty when absent. Grouping
	// fallback is applied by the profile tree, not here.
	Tag string
}

// Field synonym probes, in priority order.
var (
	titleKeys   = []string{"title", "name", "subject", "heading", "label"}
	contentKeys = []string{"content", "description", "text", "body", "message", "details", "summary"}
	idKeys      = []string{"id", "uuid", "key"}
)

// Normalize extracts an ordered list of records from an arbitrary JSON
// payload. It never fails: unknown shapes degrade to fallback probes and
// ultimately to an empty list.
func Normalize(payload []byte, scope Scope) []Record {
	root := gjson.ParseBytes(payload)

	items := extractItems(root, scope)
	records := make([]Record, 0, len(items))
	for i, item := range items {
		records = append(records, extractRecord(item, i, scope))
	}
	return records
}

// extractItems finds the record container inside the payload.
func extractItems(root gjson.Result, scope Scope) []gjson.Result {
	if !root.Exists() || root.Type == gjson.Null {
		return nil
	}
	if root.IsArray() {
		return root.Array()
	}
	if !root.IsObject() {
		return nil
	}

	for _, key := range []string{"memories", scope.containerKey(), "data", "results"} {
		if v := root.Get(key); v.IsArray() {
			return v.Array()
		}
	}

	// Fallback: treat every object-valued field as a record, in document
	// order, dropping scalar fields.
	var items []gjson.Result
	root.ForEach(func(_, value gjson.Result) bool {
		if value.IsObject() {
			items = append(items, value)
		}
		return true
	})
	return items
}

// extractRecord pulls display fields out of one record.
func extractRecord(item gjson.Result, index int, scope Scope) Record {
	titles := titleKeys
	contents := contentKeys
	if scope == ScopeProfile {
		titles = append([]string{"feature"}, titleKeys...)
		contents = append([]string{"value"}, contentKeys...)
	}

	rec := Record{
		Title:   probe(item, titles),
		Content: probe(item, contents),
		ID:      probe(item, idKeys),
		Tag:     item.Get("tag").String(),
	}
	if rec.Title == "" {
		rec.Title = fmt.Sprintf("Memory %d", index+1)
	}
	if rec.Content == "" {
		rec.Content = prettyJSON(item)
	}
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("%d", index)
	}
	return rec
}

// probe returns the first present key's value rendered as a string.
func probe(item gjson.Result, keys []string) string {
	if !item.IsObject() {
		return ""
	}
	for _, key := range keys {
		if v := item.Get(key); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// prettyJSON renders a record as indented JSON for the content fallback.
func prettyJSON(item gjson.Result) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(item.Raw), "", "  "); err != nil {
		return item.Raw
	}
	return buf.String()
}
