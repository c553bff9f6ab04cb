package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/profile-builder/internal/types"
)

func TestExtractKeywords(t *testing.T) {
	kw := ExtractKeywords("Senior Go Engineer", "Experience with C++, C#, Node.js and PostgreSQL. You will own the team's APIs.")

	for _, want := range []string{"senior", "go", "engineer", "c++", "c#", "node.js", "postgresql", "apis"} {
		assert.True(t, kw[want], "missing %q", want)
	}
	for _, stop := range []string{"and", "with", "you", "will", "experience", "the"} {
		assert.False(t, kw[stop], "stopword %q kept", stop)
	}
}

func skillNames(skills []types.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = s.Name
	}
	return out
}

func TestRankSkills(t *testing.T) {
	skills := []types.Skill{
		{Name: "Photoshop", ProficiencyLevel: 5},
		{Name: "Go", ProficiencyLevel: 3},
		{Name: "Excel", ProficiencyLevel: 4},
		{Name: "PostgreSQL", ProficiencyLevel: 2},
	}

	t.Run("overlap first, ties stable", func(t *testing.T) {
		got := RankSkills(skills, ExtractKeywords("Go developer with PostgreSQL"))
		assert.Equal(t, []string{"Go", "PostgreSQL", "Photoshop", "Excel"}, skillNames(got))
	})

	t.Run("no keywords keeps order", func(t *testing.T) {
		got := RankSkills(skills, ExtractKeywords(""))
		assert.Equal(t, skillNames(skills), skillNames(got))
	})

	t.Run("input not modified", func(t *testing.T) {
		_ = RankSkills(skills, ExtractKeywords("excel"))
		assert.Equal(t, "Photoshop", skills[0].Name)
	})
}

func TestRankExperiences(t *testing.T) {
	exps := []types.Experience{
		{Position: "Barista", Company: "Cafe", Description: "Made coffee"},
		{Position: "Backend Engineer", Company: "Acme", Description: "Built Go services on Kubernetes"},
		{Position: "Intern", Company: "Initech", Description: "Wrote Go scripts"},
	}

	got := RankExperiences(exps, ExtractKeywords("Go engineer, Kubernetes"))
	assert.Equal(t, "Backend Engineer", got[0].Position)
	assert.Equal(t, "Intern", got[1].Position)
	assert.Equal(t, "Barista", got[2].Position)
}

func TestMatchingSkills(t *testing.T) {
	skills := []types.Skill{{Name: "Go"}, {Name: "Rust"}, {Name: "Google Cloud"}}
	assert.Equal(t, []string{"Go", "Google Cloud"}, MatchingSkills(skills, ExtractKeywords("Go on Google Cloud")))
}
