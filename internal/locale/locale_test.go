package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestT(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name   string
		lang   string
		key    string
		params map[string]any
		want   string
	}{
		{
			name: "spanish",
			lang: Spanish,
			key:  "SANDetails.currentTurn",
			want: "¡Es tu turno!",
		},
		{
			name:   "english with interpolation",
			lang:   English,
			key:    "SANDetails.turnsRemaining",
			params: map[string]any{"remaining": 2},
			want:   "2 turns until yours",
		},
		{
			name: "unknown language falls back to spanish",
			lang: "pt",
			key:  "HomeScreen.PaymentButton",
			want: "Pagar ahora",
		},
		{
			name: "missing key returns key",
			lang: English,
			key:  "HomeScreen.nope",
			want: "HomeScreen.nope",
		},
		{
			name: "section is not a string",
			lang: English,
			key:  "errors",
			want: "errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.T(tt.lang, tt.key, tt.params))
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, Spanish, Resolve(""))
	assert.Equal(t, English, Resolve("en-US,en;q=0.9"))
	assert.Equal(t, Spanish, Resolve("es-VE"))
	assert.Equal(t, Spanish, Resolve("de-DE"))
	assert.Equal(t, English, Resolve("de-DE, en;q=0.5"))
}
