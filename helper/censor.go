package helper

import (
	"regexp"
	"strings"
)

var censoredWords = map[string]bool{
	"редиска":        true,
	"плохой":         true,
	"ужасный":        true,
	"отвратительный": true,
	"неприличный":    true,
	"брань":          true,
	"ругательство":   true,
}

var letterRun = regexp.MustCompile(`\p{L}+`)

// Censor masks every censored word in value, keeping its first letter. Matching ignores case;
// everything between words, including line breaks, is left as it was.
func Censor(value string) string {
	return letterRun.ReplaceAllStringFunc(value, func(word string) string {
		if !censoredWords[strings.ToLower(word)] {
			return word
		}
		return mask(word)
	})
}

func mask(word string) string {
	runes := []rune(word)
	if len(runes) <= 1 {
		return "*"
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}
