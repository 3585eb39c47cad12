package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/teammatch/internal/models"
)

const (
	skillFrontend = "Frontend Development"
	skillBackend  = "Backend Development"
	skillDesign   = "Design"
)

var requiredSkills = []string{skillFrontend, skillBackend, skillDesign}

// makePool builds participants with ids 1..n and strictly increasing
// registration times, in the order the skills are listed.
func makePool(skills ...string) []models.Participant {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]models.Participant, 0, len(skills))
	for i, s := range skills {
		out = append(out, models.Participant{
			ID:           int64(i + 1),
			ExternalID:   int64(1000 + i),
			Skill:        s,
			Experience:   "1 year",
			RegisteredAt: base.Add(time.Duration(i) * time.Minute),
			IsWaiting:    true,
		})
	}
	return out
}

func ids(team []models.Participant) []int64 {
	out := make([]int64, 0, len(team))
	for _, m := range team {
		out = append(out, m.ID)
	}
	return out
}

func TestBuildTeamsOneOfEachSkill(t *testing.T) {
	pool := makePool(skillFrontend, skillBackend, skillDesign)

	teams := BuildTeams(pool, requiredSkills, 3)
	require.Len(t, teams, 1)
	assert.Equal(t, []int64{1, 2, 3}, ids(teams[0]))

	// Pool exhausted: an immediate second pass over the leftovers forms
	// nothing.
	teams = BuildTeams(nil, requiredSkills, 3)
	assert.Empty(t, teams)
}

func TestBuildTeamsSubstitutionFillsMissingSkill(t *testing.T) {
	// Two Frontend, no Backend, one Design. The missing Backend slot is
	// filled by Design (first required skill not yet on the team with
	// someone queued), and the Design slot then falls back to a duplicate
	// Frontend.
	pool := makePool(skillFrontend, skillFrontend, skillDesign)

	teams := BuildTeams(pool, requiredSkills, 3)
	require.Len(t, teams, 1)

	skills := map[string]int{}
	for _, m := range teams[0] {
		skills[m.Skill]++
	}
	assert.Equal(t, 2, skills[skillFrontend])
	assert.Equal(t, 1, skills[skillDesign])
}

func TestBuildTeamsDuplicateFillSingleSkillPool(t *testing.T) {
	// Substitution is impossible when only one skill is represented; both
	// missing slots resolve through duplicate fill.
	pool := makePool(skillFrontend, skillFrontend, skillFrontend)

	teams := BuildTeams(pool, requiredSkills, 3)
	require.Len(t, teams, 1)
	assert.Equal(t, []int64{1, 2, 3}, ids(teams[0]))
}

func TestBuildTeamsInsufficientPool(t *testing.T) {
	pool := makePool(skillFrontend, skillBackend)
	assert.Empty(t, BuildTeams(pool, requiredSkills, 3))
	assert.Empty(t, BuildTeams(nil, requiredSkills, 3))
}

func TestBuildTeamsOldestRegistrationFirst(t *testing.T) {
	// Two of each skill; the first team must take the older participant
	// from every queue.
	pool := makePool(
		skillFrontend, skillBackend, skillDesign,
		skillFrontend, skillBackend, skillDesign,
	)

	teams := BuildTeams(pool, requiredSkills, 3)
	require.Len(t, teams, 2)
	assert.Equal(t, []int64{1, 2, 3}, ids(teams[0]))
	assert.Equal(t, []int64{4, 5, 6}, ids(teams[1]))
}

func TestBuildTeamsDeterministic(t *testing.T) {
	pool := makePool(
		skillFrontend, skillFrontend, skillDesign, skillBackend,
		skillDesign, skillFrontend, skillBackend,
	)

	first := BuildTeams(pool, requiredSkills, 3)
	for i := 0; i < 10; i++ {
		again := BuildTeams(pool, requiredSkills, 3)
		require.Equal(t, first, again)
	}
}

func TestBuildTeamsNoParticipantInTwoTeams(t *testing.T) {
	pool := makePool(
		skillFrontend, skillFrontend, skillFrontend, skillFrontend,
		skillBackend, skillBackend,
		skillDesign, skillDesign, skillDesign,
	)

	teams := BuildTeams(pool, requiredSkills, 3)
	require.NotEmpty(t, teams)

	seen := map[int64]bool{}
	for _, team := range teams {
		require.Len(t, team, 3)
		for _, m := range team {
			assert.False(t, seen[m.ID], "participant %d placed twice", m.ID)
			seen[m.ID] = true
		}
	}
}

func TestBuildTeamsUnevenPoolFormsMaximumTeams(t *testing.T) {
	// 4 Frontend, 1 Backend, 1 Design: one balanced team, then the three
	// remaining Frontend form a duplicate-filled team.
	pool := makePool(
		skillFrontend, skillFrontend, skillFrontend, skillFrontend,
		skillBackend, skillDesign,
	)

	teams := BuildTeams(pool, requiredSkills, 3)
	require.Len(t, teams, 2)
	assert.Equal(t, []int64{1, 5, 6}, ids(teams[0]))
	assert.Equal(t, []int64{2, 3, 4}, ids(teams[1]))
}

func TestNextTeamConsumesPool(t *testing.T) {
	pool := NewPool(makePool(skillFrontend, skillBackend, skillDesign), requiredSkills)

	require.Equal(t, 3, pool.Remaining())
	team := pool.NextTeam(3)
	require.Len(t, team, 3)
	assert.Equal(t, 0, pool.Remaining())
	assert.Nil(t, pool.NextTeam(3))
}
