package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.TeamSize)
	assert.Equal(t, []string{"Frontend Development", "Backend Development", "Design"}, cfg.RequiredSkills)
	assert.Equal(t, 2*time.Hour, cfg.MatchInterval)
	assert.Equal(t, time.Hour, cfg.ConfirmationTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsSkillCountMismatch(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TEAM_SIZE", "2")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUIRED_SKILLS")
}

func TestLoadRejectsNonPositiveTeamSize(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TEAM_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEAM_SIZE")
}

func TestLoadRejectsDuplicateSkills(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TEAM_SIZE", "2")
	t.Setenv("REQUIRED_SKILLS", "Design,Design")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadCustomSkills(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TEAM_SIZE", "2")
	t.Setenv("REQUIRED_SKILLS", "Mobile, DevOps ")
	t.Setenv("MATCH_INTERVAL", "30m")
	t.Setenv("CONFIRMATION_TIMEOUT", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Mobile", "DevOps"}, cfg.RequiredSkills)
	assert.Equal(t, 30*time.Minute, cfg.MatchInterval)
	assert.Zero(t, cfg.ConfirmationTimeout)

	assert.True(t, cfg.ValidSkill("DevOps"))
	assert.False(t, cfg.ValidSkill("Design"))
}
