package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ContainerShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		scope   Scope
		want    int
	}{
		{"bare sequence", `[{"title":"a"},{"title":"b"}]`, ScopeEpisodic, 2},
		{"memories key", `{"memories":[{"title":"a"}]}`, ScopeEpisodic, 1},
		{"episodic_memory key", `{"episodic_memory":[{"title":"a"},{"title":"b"},{"title":"c"}]}`, ScopeEpisodic, 3},
		{"profile_memory key", `{"profile_memory":[{"feature":"f"}]}`, ScopeProfile, 1},
		{"data key", `{"data":[{"title":"a"}]}`, ScopeEpisodic, 1},
		{"results key", `{"results":[{"title":"a"},{"title":"b"}]}`, ScopeEpisodic, 2},
		{"mapping of mappings", `{"one":{"title":"a"},"count":3,"two":{"title":"b"}}`, ScopeEpisodic, 2},
		{"empty object", `{}`, ScopeEpisodic, 0},
		{"null", `null`, ScopeEpisodic, 0},
		{"empty payload", ``, ScopeEpisodic, 0},
		{"scalar payload", `"hello"`, ScopeEpisodic, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]byte(tt.payload), tt.scope)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestNormalize_ContainerPriority(t *testing.T) {
	// When several container keys are present the first in priority
	// order wins: memories > episodic_memory > data > results.
	payload := `{
		"results":[{"title":"r"}],
		"data":[{"title":"d"}],
		"episodic_memory":[{"title":"e"}],
		"memories":[{"title":"m"}]
	}`

	got := Normalize([]byte(payload), ScopeEpisodic)
	require.Len(t, got, 1)
	assert.Equal(t, "m", got[0].Title)

	// Non-array container values are skipped, not used.
	payload = `{"memories":"nope","data":[{"title":"d"}]}`
	got = Normalize([]byte(payload), ScopeEpisodic)
	require.Len(t, got, 1)
	assert.Equal(t, "d", got[0].Title)
}

func TestNormalize_FieldSynonymPriority(t *testing.T) {
	payload := `{"memories":[{"name":"n","title":"t","subject":"s"}]}`
	got := Normalize([]byte(payload), ScopeEpisodic)
	require.Len(t, got, 1)
	assert.Equal(t, "t", got[0].Title, "title beats name regardless of document order")

	payload = `{"memories":[{"summary":"sum","text":"txt"}]}`
	got = Normalize([]byte(payload), ScopeEpisodic)
	require.Len(t, got, 1)
	assert.Equal(t, "txt", got[0].Content)

	payload = `{"memories":[{"uuid":"u-1","key":"k-1"}]}`
	got = Normalize([]byte(payload), ScopeEpisodic)
	require.Len(t, got, 1)
	assert.Equal(t, "u-1", got[0].ID)
}

func TestNormalize_Fallbacks(t *testing.T) {
	got := Normalize([]byte(`{"memories":[{"weird":"shape"},{"weird":"shape2"}]}`), ScopeEpisodic)
	require.Len(t, got, 2)

	assert.Equal(t, "Memory 1", got[0].Title)
	assert.Equal(t, "Memory 2", got[1].Title)
	assert.Equal(t, "0", got[0].ID)
	assert.Equal(t, "1", got[1].ID)

	// Content falls back to the record rendered as indented JSON.
	assert.Contains(t, got[0].Content, "\"weird\": \"shape\"")
}

func TestNormalize_ProfileFieldPriority(t *testing.T) {
	payload := `{"profile_memory":[{"feature":"favorite color","title":"t","value":"blue","content":"c","tag":"preferences"}]}`
	got := Normalize([]byte(payload), ScopeProfile)
	require.Len(t, got, 1)

	assert.Equal(t, "favorite color", got[0].Title, "feature beats the generic title probe")
	assert.Equal(t, "blue", got[0].Content, "value beats the generic content probe")
	assert.Equal(t, "preferences", got[0].Tag)
}

func TestNormalize_ProfileWithoutProfileKeys(t *testing.T) {
	payload := `{"profile_memory":[{"title":"t","content":"c"}]}`
	got := Normalize([]byte(payload), ScopeProfile)
	require.Len(t, got, 1)

	assert.Equal(t, "t", got[0].Title)
	assert.Equal(t, "c", got[0].Content)
	assert.Empty(t, got[0].Tag)
}

func TestNormalize_ResultsScenario(t *testing.T) {
	// From the observable contract: {"results":[{"name":"A","text":"hi"}]}
	got := Normalize([]byte(`{"results":[{"name":"A","text":"hi"}]}`), ScopeEpisodic)
	require.Len(t, got, 1)

	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "hi", got[0].Content)
	assert.Equal(t, "0", got[0].ID)
}

func TestNormalize_OrderPreserved(t *testing.T) {
	payload := `{"memories":[{"title":"first"},{"title":"second"},{"title":"third"}]}`
	got := Normalize([]byte(payload), ScopeEpisodic)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].Title, got[1].Title, got[2].Title})
}
