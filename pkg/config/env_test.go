package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandMapEnvVars_Nested(t *testing.T) {
	t.Setenv("CREW_NESTED_KEY", "resolved")

	input := map[string]any{
		"llm": map[string]any{
			"api_key": "${CREW_NESTED_KEY}",
			"model":   "gpt-4o-mini",
		},
		"rate_limit": map[string]any{
			"limits": []any{
				map[string]any{"type": "token", "limit": 200000},
				map[string]any{"window": "${CREW_NESTED_KEY:-minute}"},
			},
		},
		"port": 8080,
	}

	out := expandMapEnvVars(input)

	llm, ok := out["llm"].(map[string]any)
	require.True(t, ok, "llm section should stay a map")
	assert.Equal(t, "resolved", llm["api_key"])
	assert.Equal(t, "gpt-4o-mini", llm["model"])

	rl, ok := out["rate_limit"].(map[string]any)
	require.True(t, ok)
	limits, ok := rl["limits"].([]any)
	require.True(t, ok, "limits should stay a slice")
	require.Len(t, limits, 2)

	first, ok := limits[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 200000, first["limit"], "non-string values pass through untouched")

	second, ok := limits[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "resolved", second["window"])

	assert.Equal(t, 8080, out["port"])

	// The input map is not mutated.
	assert.Equal(t, "${CREW_NESTED_KEY}", input["llm"].(map[string]any)["api_key"])
}
