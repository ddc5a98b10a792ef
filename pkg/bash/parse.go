// Package bash splits command lines the way a POSIX shell would, without
// expansions.
package bash

import (
	"errors"
	"strings"
)

var ErrUnterminatedQuote = errors.New("unterminated quote")

// Split breaks input into words. Single quotes keep everything literal, double
// quotes and backslashes escape whitespace. A quoted empty string is a word.
func Split(input string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		inWord  bool
		single  bool
		double  bool
		escaped bool
	)

	for _, r := range input {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case single:
			if r == '\'' {
				single = false
			} else {
				word.WriteRune(r)
			}
		case r == '\\':
			escaped, inWord = true, true
		case double:
			if r == '"' {
				double = false
			} else {
				word.WriteRune(r)
			}
		case r == '\'':
			single, inWord = true, true
		case r == '"':
			double, inWord = true, true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	if single || double || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}
