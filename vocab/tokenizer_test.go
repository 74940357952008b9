package vocab

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerms(t *testing.T) {
	t.Run("case folds and splits on punctuation", func(t *testing.T) {
		terms := Terms("Armor Class (AC) represents defense.")
		assert.Equal(t, []string{"armor", "class", "ac", "represents", "defense"}, terms)
	})

	t.Run("rewrites dice notation", func(t *testing.T) {
		terms := Terms("deals 2d6 damage")
		assert.Equal(t, []string{"deals", "2", "d", "6", "dice", "roll", "damage"}, terms)
	})

	t.Run("rewrites modifiers", func(t *testing.T) {
		assert.Equal(t, []string{"attack", "plus", "5"}, Terms("Attack +5"))
		assert.Equal(t, []string{"penalty", "minus", "2"}, Terms("penalty -2"))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, Terms("  ...  "))
	})
}

func TestTokenize(t *testing.T) {
	t.Run("appends bigrams", func(t *testing.T) {
		tokens := Tokenize("armor class rules")
		assert.Equal(t, []string{
			"armor", "class", "rules",
			"armor_class", "class_rules",
		}, tokens)
	})

	t.Run("single token has no bigrams", func(t *testing.T) {
		assert.Equal(t, []string{"fireball"}, Tokenize("Fireball"))
	})

	t.Run("pairs original terms only", func(t *testing.T) {
		// n terms yield exactly n-1 bigrams; bigrams never chain with
		// each other.
		tokens := Tokenize("the goblin attacks with a rusty scimitar")
		assert.Len(t, tokens, 13)
		for _, token := range tokens[7:] {
			assert.True(t, isBigram(token))
			assert.Equal(t, 1, strings.Count(token, "_"))
		}
	})
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("with"))
	assert.False(t, IsStopWord("fireball"))
}
