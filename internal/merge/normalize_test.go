package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"anthony bernard", "Anthony Bernard"},
		{"ludwig van beethoven", "Ludwig van Beethoven"},
		{"VAN morrison", "Van Morrison"},
		{"patrick o'connor", "Patrick O'Connor"},
		{"ronald mcdonald", "Ronald McDonald"},
		{"charles de la fontaine", "Charles de la Fontaine"},
		{"jan van der berg", "Jan van der Berg"},
		{"MARIA  DOS SANTOS", "Maria Dos Santos"},
		{"  spaced   out  ", "Spaced Out"},
		{"", ""},
		{"o'", "O'"},
		{"mc", "Mc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}
