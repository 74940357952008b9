package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "fireball", "fireball", 0},
		{"empty left", "", "abc", 3},
		{"empty right", "abc", "", 3},
		{"substitution", "fyreball", "fireball", 1},
		{"deletion", "firebal", "fireball", 1},
		{"insertion", "firebball", "fireball", 1},
		{"transposition", "fireblal", "fireball", 1},
		{"two edits", "fyrebal", "fireball", 2},
		{"unrelated", "cat", "dog", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, editDistance(tt.a, tt.b))
			assert.Equal(t, tt.want, editDistance(tt.b, tt.a))
		})
	}
}
