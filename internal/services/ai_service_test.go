package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMealAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
	}{
		{
			name:     "plain json",
			response: `{"food_items":["гречка","курица"],"weight":320,"carbs":45.5,"confidence":"high","analysis_text":"Оценка по стандартной порции"}`,
		},
		{
			name: "json in code fence",
			response: "```json\n" +
				`{"food_items":["яблоко"],"weight":180,"carbs":22,"confidence":"medium","analysis_text":"Среднее яблоко"}` +
				"\n```",
		},
		{
			name:     "json wrapped in prose",
			response: `Here is the analysis: {"food_items":["хлеб"],"weight":50,"carbs":25,"confidence":"low","analysis_text":"Ломтик хлеба"} I hope this helps!`,
		},
		{
			name:     "no json at all",
			response: "I cannot identify any food in this image.",
			wantErr:  true,
		},
		{
			name:     "malformed json",
			response: `{"food_items": [unterminated`,
			wantErr:  true,
		},
		{
			name:     "negative carbs",
			response: `{"food_items":["вода"],"weight":200,"carbs":-5,"confidence":"high","analysis_text":"?"}`,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseMealAnalysis(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, result.FoodItems)
			assert.GreaterOrEqual(t, result.Carbs, 0.0)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON(`prefix {"a":1} suffix`))
	assert.Equal(t, "", extractJSON("no braces here"))
	assert.Equal(t, "", extractJSON("} reversed {"))
}
