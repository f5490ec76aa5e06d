// Package generator builds the prompt levels of a session.
package generator

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
	"unicode"

	"github.com/verte-zerg/typeduel/internal/level"
)

// letterOrder introduces letters by rough English frequency, so the early
// levels drill the most useful keys first.
const letterOrder = "etaoinshrdlucmfwypvbgkjqxz"

// drillFactor is the selection bias toward a level's fresh letters.
const drillFactor = 2.0

// Generator produces randomized prompt units.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Generate selects words uniformly and applies caps/punctuation rules.
func (g *Generator) Generate(words []string, count int, capsPct, punctPct float64, punctSet []rune) []string {
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = applyCaps(g.rnd, word, capsPct)
		word = applyPunct(g.rnd, word, punctPct, punctSet)
		result = append(result, word)
	}
	return result
}

// GenerateWeighted selects words with a bias toward the given characters.
func (g *Generator) GenerateWeighted(words []string, count int, capsPct, punctPct float64, punctSet []rune, focusSet map[rune]struct{}, factor float64) []string {
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		focusCount := 0
		for _, r := range word {
			if _, ok := focusSet[r]; ok {
				focusCount++
			}
		}
		w := 1.0 + float64(focusCount)*factor
		weights[i] = w
		total += w
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := 0
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		word := words[idx]
		word = applyCaps(g.rnd, word, capsPct)
		word = applyPunct(g.rnd, word, punctPct, punctSet)
		result = append(result, word)
	}
	return result
}

// LetterCurriculum builds levelCount levels that introduce letters
// progressively. Each level drills unitsPerLevel single-letter units drawn
// from every letter introduced so far, biased toward the fresh ones.
func (g *Generator) LetterCurriculum(levelCount, unitsPerLevel int) []level.Level {
	if levelCount <= 0 || unitsPerLevel <= 0 {
		return nil
	}
	total := len(letterOrder)
	if levelCount > total {
		levelCount = total
	}

	out := make([]level.Level, 0, levelCount)
	prev := 0
	for i := 1; i <= levelCount; i++ {
		end := total * i / levelCount
		if end < 2 {
			end = 2
		}
		if end < prev {
			end = prev
		}
		pool := letterOrder[:end]
		fresh := letterOrder[prev:end]
		prev = end

		letters := make([]string, 0, len(pool))
		for _, r := range pool {
			letters = append(letters, string(r))
		}
		freshSet := make(map[rune]struct{}, len(fresh))
		for _, r := range fresh {
			freshSet[r] = struct{}{}
		}

		name := fresh
		if name == "" {
			name = "review"
		}
		out = append(out, level.Level{
			Name:  name,
			Units: g.GenerateWeighted(letters, unitsPerLevel, 0, 0, nil, freshSet, drillFactor),
		})
	}
	return out
}

// WordCurriculum splits the word list into levelCount buckets of rising
// word length and generates unitsPerLevel units from each.
func (g *Generator) WordCurriculum(words []string, levelCount, unitsPerLevel int, capsPct, punctPct float64, punctSet []rune) ([]level.Level, error) {
	if levelCount <= 0 || unitsPerLevel <= 0 {
		return nil, fmt.Errorf("level and unit counts must be > 0")
	}
	if len(words) < levelCount {
		return nil, fmt.Errorf("need at least %d words for %d levels, have %d", levelCount, levelCount, len(words))
	}
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) < len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	out := make([]level.Level, 0, levelCount)
	prev := 0
	for i := 1; i <= levelCount; i++ {
		end := len(sorted) * i / levelCount
		if end <= prev {
			end = prev + 1
		}
		bucket := sorted[prev:end]
		prev = end

		minLen := len([]rune(bucket[0]))
		maxLen := len([]rune(bucket[len(bucket)-1]))
		name := fmt.Sprintf("%d-%d letters", minLen, maxLen)
		if minLen == maxLen {
			name = fmt.Sprintf("%d letters", minLen)
		}
		out = append(out, level.Level{
			Name:  name,
			Units: g.Generate(bucket, unitsPerLevel, capsPct, punctPct, punctSet),
		})
	}
	return out, nil
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
