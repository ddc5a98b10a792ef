// Package estimate gives a rough token count of a conversation, good enough to
// warn the user before the history outgrows the agent's context window.
package estimate

import (
	"unicode"

	"github.com/ryanreadbooks/codemaster/chat/model"
)

// runesPerToken for scripts whose density differs from the default of two.
var runesPerToken = []struct {
	table *unicode.RangeTable
	ratio float64
}{
	{unicode.Han, 1.2},
	{unicode.Hiragana, 1.5},
	{unicode.Katakana, 1.5},
	{unicode.Hangul, 1.5},
	{unicode.Cyrillic, 3.0},
	{unicode.Arabic, 2.5},
	{unicode.Latin, 3.5},
	{unicode.Nd, 4.0},
	{unicode.So, 1.0},
	{unicode.Sk, 1.0},
	{unicode.Sm, 1.0},
	{unicode.P, 2.0},
	{unicode.White_Space, 5.0},
}

const defaultRunesPerToken = 2.0

// Tokens estimates the token count of text.
func Tokens(text string) int {
	if text == "" {
		return 0
	}

	var tokens float64
	for _, r := range text {
		ratio := defaultRunesPerToken
		for _, c := range runesPerToken {
			if unicode.Is(c.table, r) {
				ratio = c.ratio
				break
			}
		}
		tokens += 1.0 / ratio
	}

	return int(tokens) + 1
}

// History estimates the tokens the host receives for msgs.
func History(msgs []model.Message) int {
	var total int
	for _, m := range msgs {
		total += Tokens(m.Content)
		for _, tc := range m.ToolCalls {
			total += Tokens(tc.Function.Name) + Tokens(tc.Function.Arguments)
		}
	}
	return total
}
