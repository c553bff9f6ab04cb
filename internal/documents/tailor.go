package documents

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/profile-builder/internal/types"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true, "by": true,
	"for": true, "from": true, "has": true, "have": true, "in": true, "is": true, "it": true,
	"of": true, "on": true, "or": true, "our": true, "that": true, "the": true, "their": true,
	"this": true, "to": true, "we": true, "will": true, "with": true, "you": true, "your": true,
	"who": true, "what": true, "work": true, "team": true, "role": true, "years": true,
	"experience": true, "ability": true, "strong": true, "skills": true, "plus": true,
}

// Keywords is the set of lowercase terms of a job posting.
type Keywords map[string]bool

// ExtractKeywords tokenizes text, keeping symbols that belong to technology
// names such as "c++", "c#" and "node.js".
func ExtractKeywords(texts ...string) Keywords {
	kw := make(Keywords)
	for _, text := range texts {
		for _, tok := range tokenize(text) {
			if len(tok) < 2 && tok != "c" && tok != "r" {
				continue
			}
			if !stopwords[tok] {
				kw[tok] = true
			}
		}
	}
	return kw
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.Trim(f, "."); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// score counts the distinct keywords present in texts.
func (kw Keywords) score(texts ...string) int {
	if len(kw) == 0 {
		return 0
	}
	seen := make(map[string]bool)
	for _, text := range texts {
		for _, tok := range tokenize(text) {
			if kw[tok] {
				seen[tok] = true
			}
		}
	}
	return len(seen)
}

// RankSkills orders skills by keyword overlap. Ties keep their stored order.
func RankSkills(skills []types.Skill, kw Keywords) []types.Skill {
	out := append([]types.Skill(nil), skills...)
	scores := make(map[int]int, len(out))
	for i, s := range out {
		scores[i] = kw.score(s.Name)
	}
	idx := indexes(len(out))
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	return permute(out, idx)
}

// RankExperiences orders experiences by keyword overlap. Without overlap
// the stored order is kept.
func RankExperiences(exps []types.Experience, kw Keywords) []types.Experience {
	out := append([]types.Experience(nil), exps...)
	scores := make(map[int]int, len(out))
	for i, e := range out {
		scores[i] = kw.score(e.Position, e.Company, e.Description)
	}
	idx := indexes(len(out))
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	return permute(out, idx)
}

// MatchingSkills returns the names of skills the posting mentions.
func MatchingSkills(skills []types.Skill, kw Keywords) []string {
	var out []string
	for _, s := range skills {
		if kw.score(s.Name) > 0 {
			out = append(out, s.Name)
		}
	}
	return out
}

func indexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func permute[T any](items []T, idx []int) []T {
	out := make([]T, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
