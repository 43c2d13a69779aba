package merge

import "strings"

// Linking particles that stay lowercase inside a name ("Ludwig van
// Beethoven", "Jeanne d'Arc" style conventions). A particle in first
// position is still capitalized.
var lowercaseParticles = map[string]bool{
	"de": true, "du": true, "des": true, "la": true, "le": true,
	"les": true, "van": true, "von": true, "da": true, "di": true,
	"of": true, "and": true, "der": true, "den": true, "het": true,
	"el": true, "al": true,
}

// NormalizeName canonicalizes a person name's casing: each word
// capitalized, linking particles lowercased except in first position,
// with O'Connor and McDonald style prefixes handled. Interior whitespace
// collapses to single spaces.
func NormalizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		lower := strings.ToLower(w)
		if i > 0 && lowercaseParticles[lower] {
			words[i] = lower
			continue
		}
		words[i] = capitalizeWord(lower)
	}
	return strings.Join(words, " ")
}

func capitalizeWord(lower string) string {
	if rest, ok := strings.CutPrefix(lower, "o'"); ok && rest != "" {
		return "O'" + upperFirst(rest)
	}
	if rest, ok := strings.CutPrefix(lower, "mc"); ok && rest != "" {
		return "Mc" + upperFirst(rest)
	}
	return upperFirst(lower)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
