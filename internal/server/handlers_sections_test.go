package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/types"
)

func sectionPath(userID uuid.UUID, section string, id ...uuid.UUID) string {
	p := fmt.Sprintf("/api/users/%s/%s", userID, section)
	if len(id) > 0 {
		p += "/" + id[0].String()
	}
	return p
}

func TestSections_CertificationRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada", "ada@example.com")

	w := env.do(t, http.MethodPost, sectionPath(userID, profile.SectionCertifications), token, map[string]string{
		"name":           "AWS SAA",
		"issuer":         "AWS",
		"issueDate":      "2022-01-15",
		"expirationDate": "2025-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created types.Certification
	decodeData(t, w, &created)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, "AWS SAA", created.Name)
	assert.Equal(t, "AWS", created.Issuer)
	assert.Equal(t, "2022-01-15", created.IssueDate.String())
	require.NotNil(t, created.ExpirationDate)
	assert.Equal(t, "2025-01-15", created.ExpirationDate.String())
	assert.Nil(t, created.CredentialURL)

	w = env.do(t, http.MethodGet, sectionPath(userID, profile.SectionCertifications), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []types.Certification
	decodeData(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, created.Name, list[0].Name)
	assert.Equal(t, created.ExpirationDate.String(), list[0].ExpirationDate.String())

	w = env.do(t, http.MethodGet, sectionPath(userID, profile.SectionCertifications, created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var single types.Certification
	decodeData(t, w, &single)
	assert.Equal(t, created.ID, single.ID)
}

func TestSections_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada", "ada@example.com")

	tests := []struct {
		name      string
		section   string
		body      any
		wantField string
	}{
		{
			name:      "proficiency above range",
			section:   profile.SectionSkills,
			body:      map[string]any{"name": "Go", "proficiencyLevel": 6},
			wantField: "proficiencyLevel",
		},
		{
			name:      "proficiency below range",
			section:   profile.SectionSkills,
			body:      map[string]any{"name": "Go", "proficiencyLevel": 0},
			wantField: "proficiencyLevel",
		},
		{
			name:      "blank skill name",
			section:   profile.SectionSkills,
			body:      map[string]any{"name": "   ", "proficiencyLevel": 3},
			wantField: "name",
		},
		{
			name:    "end date before start date",
			section: profile.SectionExperiences,
			body: map[string]any{
				"position": "Engineer", "company": "Acme",
				"startDate": "2022-05-01", "endDate": "2021-01-01",
			},
			wantField: "endDate",
		},
		{
			name:    "expiration before issue",
			section: profile.SectionCertifications,
			body: map[string]any{
				"name": "CKA", "issuer": "CNCF",
				"issueDate": "2023-01-01", "expirationDate": "2022-01-01",
			},
			wantField: "expirationDate",
		},
		{
			name:    "end year before start year",
			section: profile.SectionEducation,
			body: map[string]any{
				"institution": "MIT", "degree": "BSc", "fieldOfStudy": "Math",
				"startYear": 2020, "endYear": 2018,
			},
			wantField: "endYear",
		},
		{
			name:      "social link without scheme",
			section:   profile.SectionSocialLinks,
			body:      map[string]any{"platform": "GitHub", "url": "github.com/ada"},
			wantField: "url",
		},
		{
			name:      "project with ftp url",
			section:   profile.SectionProjects,
			body:      map[string]any{"name": "Engine", "url": "ftp://example.com"},
			wantField: "url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, sectionPath(userID, tt.section), token, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decodeError(t, w)
			assert.Equal(t, "validation failed", body.Error)
			assert.Contains(t, body.Fields, tt.wantField)
		})
	}

	// Nothing was stored.
	skills, err := env.store.Skills().List(t.Context(), userID)
	require.NoError(t, err)
	assert.Empty(t, skills)
}

func TestSections_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada", "ada@example.com")

	w := env.do(t, http.MethodPost, sectionPath(userID, profile.SectionCertifications), token, map[string]string{
		"name": "CKA", "issuer": "CNCF", "issueDate": "yesterday",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, sectionPath(userID, profile.SectionSkills), token, "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSections_CurrentPositionClearsEndDate(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada", "ada@example.com")

	w := env.do(t, http.MethodPost, sectionPath(userID, profile.SectionExperiences), token, map[string]any{
		"position":          "Staff Engineer",
		"company":           "Acme",
		"startDate":         "2021-03-01",
		"endDate":           "2023-01-01",
		"isCurrentPosition": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created types.Experience
	decodeData(t, w, &created)
	assert.True(t, created.IsCurrentPosition)
	assert.Nil(t, created.EndDate)
	assert.Equal(t, "Mar 2021 - Present", profile.DateRange(created.StartDate, created.EndDate, created.IsCurrentPosition))

	// Leaving the position keeps the new end date.
	w = env.do(t, http.MethodPut, sectionPath(userID, profile.SectionExperiences, created.ID), token, map[string]any{
		"position":          "Staff Engineer",
		"company":           "Acme",
		"startDate":         "2021-03-01",
		"endDate":           "2024-06-30",
		"isCurrentPosition": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.Experience
	decodeData(t, w, &updated)
	require.NotNil(t, updated.EndDate)
	assert.Equal(t, "2024-06-30", updated.EndDate.String())
}

func TestSections_Update(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada", "ada@example.com")

	w := env.do(t, http.MethodPost, sectionPath(userID, profile.SectionSkills), token, map[string]any{
		"name": "Go", "category": "Languages", "proficiencyLevel": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var skill types.Skill
	decodeData(t, w, &skill)

	// The body id is ignored in favour of the path id.
	w = env.do(t, http.MethodPut, sectionPath(userID, profile.SectionSkills, skill.ID), token, map[string]any{
		"id": uuid.NewString(), "name": " Go ", "category": "Languages", "proficiencyLevel": 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.Skill
	decodeData(t, w, &updated)
	assert.Equal(t, skill.ID, updated.ID)
	assert.Equal(t, "Go", updated.Name)
	assert.Equal(t, 5, updated.ProficiencyLevel)
	assert.Equal(t, skill.CreatedAt.Unix(), updated.CreatedAt.Unix())

	w = env.do(t, http.MethodPut, sectionPath(userID, profile.SectionSkills, uuid.New()), token, map[string]any{
		"name": "Rust", "proficiencyLevel": 2,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, sectionPath(userID, profile.SectionSkills)+"/not-a-uuid", token, map[string]any{
		"name": "Rust", "proficiencyLevel": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSections_Delete(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada", "ada@example.com")

	var ids []uuid.UUID
	for _, name := range []string{"Analytical Engine", "Difference Engine"} {
		w := env.do(t, http.MethodPost, sectionPath(userID, profile.SectionProjects), token, map[string]any{
			"name":         name,
			"technologies": []string{"brass", " gears "},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var p types.Project
		decodeData(t, w, &p)
		assert.Equal(t, []string{"brass", "gears"}, p.Technologies)
		ids = append(ids, p.ID)
	}

	w := env.do(t, http.MethodDelete, sectionPath(userID, profile.SectionProjects, ids[0]), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, sectionPath(userID, profile.SectionProjects, ids[0]), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, sectionPath(userID, profile.SectionProjects), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []types.Project
	decodeData(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, ids[1], list[0].ID)

	// Deleting again reports the record as missing.
	w = env.do(t, http.MethodDelete, sectionPath(userID, profile.SectionProjects, ids[0]), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSections_OwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	adaID, adaToken := env.register(t, "Ada", "ada@example.com")
	charlesID, charlesToken := env.register(t, "Charles", "charles@example.com")

	w := env.do(t, http.MethodPost, sectionPath(charlesID, profile.SectionSocialLinks), charlesToken, map[string]any{
		"platform": "GitHub", "url": "https://github.com/babbage",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var link types.SocialLink
	decodeData(t, w, &link)

	// Another user's collection is forbidden outright.
	w = env.do(t, http.MethodGet, sectionPath(charlesID, profile.SectionSocialLinks), adaToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodDelete, sectionPath(charlesID, profile.SectionSocialLinks, link.ID), adaToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Addressing another user's record through one's own path finds nothing.
	w = env.do(t, http.MethodGet, sectionPath(adaID, profile.SectionSocialLinks, link.ID), adaToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, sectionPath(adaID, profile.SectionSocialLinks, link.ID), adaToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, sectionPath(charlesID, profile.SectionSocialLinks), charlesToken, nil)
	var list []types.SocialLink
	decodeData(t, w, &list)
	assert.Len(t, list, 1)
}

func TestSections_MeAlias(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada", "ada@example.com")

	w := env.do(t, http.MethodPost, "/api/users/me/education", token, map[string]any{
		"institution": "University of London", "degree": "BSc",
		"fieldOfStudy": "Mathematics", "startYear": 2015, "endYear": 2018,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, sectionPath(userID, profile.SectionEducation), token, nil)
	var list []types.Education
	decodeData(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, userID, list[0].UserID)
}

func TestSections_BatchUpdate(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "Ada", "ada@example.com")

	var skills []types.Skill
	for _, name := range []string{"Go", "SQL"} {
		w := env.do(t, http.MethodPost, sectionPath(userID, profile.SectionSkills), token, map[string]any{
			"name": name, "proficiencyLevel": 2,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var s types.Skill
		decodeData(t, w, &s)
		skills = append(skills, s)
	}

	t.Run("applies every update", func(t *testing.T) {
		skills[0].ProficiencyLevel = 4
		skills[1].ProficiencyLevel = 5
		w := env.do(t, http.MethodPut, sectionPath(userID, profile.SectionSkills), token, skills)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, err := env.store.Skills().List(t.Context(), userID)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, 4, stored[0].ProficiencyLevel)
		assert.Equal(t, 5, stored[1].ProficiencyLevel)
	})

	t.Run("invalid item rejects the batch", func(t *testing.T) {
		batch := []types.Skill{skills[0], skills[1]}
		batch[0].ProficiencyLevel = 1
		batch[1].ProficiencyLevel = 9
		w := env.do(t, http.MethodPut, sectionPath(userID, profile.SectionSkills), token, batch)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "[1].proficiencyLevel")

		stored, err := env.store.Skills().Get(t.Context(), userID, skills[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.ProficiencyLevel)
	})

	t.Run("unknown id rejects the batch", func(t *testing.T) {
		batch := []types.Skill{skills[0], skills[1]}
		batch[0].ProficiencyLevel = 1
		batch[1].ID = uuid.New()
		w := env.do(t, http.MethodPut, sectionPath(userID, profile.SectionSkills), token, batch)
		require.Equal(t, http.StatusNotFound, w.Code)

		stored, err := env.store.Skills().Get(t.Context(), userID, skills[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.ProficiencyLevel)
	})

	t.Run("missing id", func(t *testing.T) {
		w := env.do(t, http.MethodPut, sectionPath(userID, profile.SectionSkills), token, []map[string]any{
			{"name": "Go", "proficiencyLevel": 3},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "[0].id")
	})
}
