package services

import (
	"regexp"
	"strings"
	"unicode"
)

// Screening is the outcome of checking user text for content a moderator
// should look at promptly.
type Screening struct {
	Threat   bool
	SelfHarm bool
	Keywords []string
}

func (s Screening) Alert() bool {
	return s.Threat || s.SelfHarm
}

var threatWords = []string{
	"kill", "murder", "assault", "attack", "harm", "hurt", "destroy",
	"shoot", "stab", "strangle", "threat", "revenge", "slaughter", "massacre",
}

var selfHarmWords = []string{
	"suicide", "kill myself", "end my life", "take my life", "end it all",
	"self harm", "cut myself", "hurt myself", "harm myself", "want to die",
	"better off dead", "unalive",
}

var (
	obfuscations = strings.NewReplacer(
		"@", "a", "4", "a", "3", "e", "!", "i", "1", "i",
		"0", "o", "$", "s", "5", "s", "7", "t", "+", "t",
	)
	spaces = regexp.MustCompile(`\s+`)
)

// normalizeText lowercases, undoes common character substitutions, keeps
// letters only and collapses repeated letters ("kiiill" -> "kil").
func normalizeText(text string) string {
	cleaned := obfuscations.Replace(strings.ToLower(text))

	var b strings.Builder
	var last rune
	lastLetter := false
	for _, r := range cleaned {
		letter := unicode.IsLetter(r)
		if !letter {
			r = ' '
		}
		if letter && lastLetter && r == last {
			continue
		}
		b.WriteRune(r)
		last, lastLetter = r, letter
	}
	return strings.TrimSpace(spaces.ReplaceAllString(b.String(), " "))
}

// matchWords finds dictionary entries in normalized text. Single words
// must match a whole word so "skill" does not match "kill".
func matchWords(text string, dictionary []string) []string {
	words := strings.Fields(text)
	var found []string
	for _, entry := range dictionary {
		canonical := normalizeText(entry)
		if !strings.Contains(text, canonical) {
			continue
		}
		if strings.Contains(canonical, " ") {
			found = append(found, entry)
			continue
		}
		for _, w := range words {
			if w == canonical {
				found = append(found, entry)
				break
			}
		}
	}
	return found
}

// ScreenText checks text against the threat and self-harm dictionaries.
func ScreenText(text string) Screening {
	normalized := normalizeText(text)
	var s Screening
	if words := matchWords(normalized, threatWords); len(words) > 0 {
		s.Threat = true
		s.Keywords = append(s.Keywords, words...)
	}
	if words := matchWords(normalized, selfHarmWords); len(words) > 0 {
		s.SelfHarm = true
		s.Keywords = append(s.Keywords, words...)
	}
	return s
}
