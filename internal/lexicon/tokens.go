// Package lexicon provides tokenization and the word lists shared by the text analyzers.
package lexicon

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)
	sentencePattern = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)
	paragraphSplit  = regexp.MustCompile(`\n\s*\n`)
)

// Tokenize lowercases text and splits it into words. Contractions stay whole.
func Tokenize(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	for i, m := range matches {
		matches[i] = strings.ReplaceAll(m, "’", "'")
	}
	return matches
}

// Normalize lowercases a single word and strips surrounding punctuation.
func Normalize(word string) string {
	word = strings.ToLower(strings.ReplaceAll(word, "’", "'"))
	return strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Sentence is a sentence with its terminal punctuation kept.
type Sentence struct {
	Text   string
	Tokens []string
}

// IsQuestion reports whether the sentence ends with a question mark.
func (s Sentence) IsQuestion() bool {
	return strings.HasSuffix(s.Text, "?")
}

// IsExclamation reports whether the sentence ends with an exclamation mark.
func (s Sentence) IsExclamation() bool {
	return strings.HasSuffix(s.Text, "!")
}

// Sentences splits text into sentences, dropping ones with no words.
func Sentences(text string) []Sentence {
	var out []Sentence
	for _, raw := range sentencePattern.FindAllString(text, -1) {
		raw = strings.TrimSpace(raw)
		tokens := Tokenize(raw)
		if len(tokens) == 0 {
			continue
		}
		out = append(out, Sentence{Text: raw, Tokens: tokens})
	}
	return out
}

// Paragraphs splits text on blank lines, dropping empty paragraphs.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range paragraphSplit.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsStopword reports whether w is a function word.
func IsStopword(w string) bool {
	return stopwords[w]
}

// IsFiller reports whether w is a spoken filler.
func IsFiller(w string) bool {
	return fillers[w]
}

// IsContent reports whether w carries meaning on its own.
func IsContent(w string) bool {
	if len([]rune(w)) < 3 || stopwords[w] || fillers[w] {
		return false
	}
	for _, r := range w {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// IsEmphasis reports whether w is an intensifier or excited word.
func IsEmphasis(w string) bool {
	return emphasis[w]
}

// IsContraction reports whether w is a contracted form.
func IsContraction(w string) bool {
	return strings.Contains(w, "'") && !strings.HasSuffix(w, "'s") || contractionsWithS[w]
}

// IsSlang reports whether w is casual or slang usage.
func IsSlang(w string) bool {
	return slang[w]
}

// IsPersonalPronoun reports whether w is a first or second person pronoun.
func IsPersonalPronoun(w string) bool {
	return personalPronouns[w]
}

// ContainsPhrase reports whether the token sequence contains phrase as whole words.
func ContainsPhrase(tokens []string, phrase string) bool {
	return CountPhrase(tokens, phrase) > 0
}

// CountPhrase counts whole-word occurrences of phrase in tokens.
func CountPhrase(tokens []string, phrase string) int {
	parts := strings.Fields(phrase)
	if len(parts) == 0 || len(parts) > len(tokens) {
		return 0
	}
	count := 0
	for i := 0; i+len(parts) <= len(tokens); i++ {
		match := true
		for j, p := range parts {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			count++
		}
	}
	return count
}

// CountAny counts occurrences of every phrase in the list.
func CountAny(tokens []string, phrases []string) int {
	total := 0
	for _, p := range phrases {
		total += CountPhrase(tokens, p)
	}
	return total
}
