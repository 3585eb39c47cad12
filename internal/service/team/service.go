package team

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhil/teammatch/internal/config"
	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/matcher"
	"github.com/nikhil/teammatch/internal/models"
	"github.com/nikhil/teammatch/internal/store"
)

// Outcome is the result of recording one member's response.
type Outcome string

const (
	OutcomeConfirmed     Outcome = "confirmed"
	OutcomeStillPending  Outcome = "still_pending"
	OutcomeDissolved     Outcome = "dissolved"
	OutcomeNotApplicable Outcome = "not_applicable"
)

// Store is the persistence surface the team service consumes.
type Store interface {
	WaitingParticipants(ctx context.Context) ([]models.Participant, error)
	ParticipantByExternalID(ctx context.Context, externalID int64) (models.Participant, error)
	CreateTeam(ctx context.Context, memberIDs []int64) (int64, error)
	TeamByID(ctx context.Context, teamID int64) (models.Team, error)
	TeamRoster(ctx context.Context, teamID int64) ([]models.TeamMemberDetail, error)
	SetMemberConfirmed(ctx context.Context, teamID, participantID int64) error
	SetTeamConfirmed(ctx context.Context, teamID int64) error
	SetTeamChannel(ctx context.Context, teamID, channelID int64) error
	DissolveTeam(ctx context.Context, teamID int64) error
	PendingTeamsBefore(ctx context.Context, cutoff time.Time) ([]models.Team, error)
	CreateChannel(ctx context.Context, teamID int64, name string) (int64, error)
}

// Notifier pushes team lifecycle events to members. Implementations must
// not block; delivery failures are their own concern.
type Notifier interface {
	TeamMatched(teamID int64, roster []models.TeamMemberDetail)
	TeamConfirmed(teamID, channelID int64, roster []models.TeamMemberDetail)
	TeamDissolved(teamID int64, roster []models.TeamMemberDetail)
}

// Service owns team formation and the confirmation protocol.
type Service struct {
	store    Store
	notifier Notifier
	cfg      *config.Config
	log      *logger.Logger

	// passMu keeps allocation passes non-overlapping: a pass reads the
	// waiting pool exactly once and applies its side effects before the
	// next pass may start.
	passMu sync.Mutex
	locks  *teamLocks
}

// NewService wires the team service.
func NewService(st Store, notifier Notifier, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		locks:    newTeamLocks(),
	}
}

// RunAllocationPass reads the waiting pool once, forms as many full teams
// as the pool allows, and creates each atomically. Returns the snapshots of
// the teams created. An insufficient pool is not an error; storage failures
// abort the pass and leave already-created teams standing.
func (s *Service) RunAllocationPass(ctx context.Context) ([]models.TeamInfo, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	passID := uuid.NewString()[:8]

	waiting, err := s.store.WaitingParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("read waiting pool: %w", err)
	}

	groups := matcher.BuildTeams(waiting, s.cfg.RequiredSkills, s.cfg.TeamSize)
	s.log.Info("allocation pass", "pass_id", passID, "waiting", len(waiting), "teams", len(groups))

	var created []models.TeamInfo
	for _, members := range groups {
		ids := make([]int64, len(members))
		for i, m := range members {
			ids[i] = m.ID
		}

		teamID, err := s.store.CreateTeam(ctx, ids)
		if err != nil {
			return created, fmt.Errorf("create team: %w", err)
		}

		roster, err := s.store.TeamRoster(ctx, teamID)
		if err != nil {
			return created, fmt.Errorf("read new team %d: %w", teamID, err)
		}

		s.notifier.TeamMatched(teamID, roster)
		s.log.Info("team formed", "pass_id", passID, "team_id", teamID, "members", len(roster))
		created = append(created, snapshot(teamID, time.Now().UTC(), false, nil, roster))
	}
	return created, nil
}

// SubmitResponse records one member's accept or decline for a pending team.
// Responses for unknown participants, unknown teams, already-confirmed
// teams, or memberships that no longer exist are NotApplicable no-ops.
func (s *Service) SubmitResponse(ctx context.Context, externalID, teamID int64, accepted bool) (Outcome, error) {
	p, err := s.store.ParticipantByExternalID(ctx, externalID)
	if errors.Is(err, store.ErrNotFound) {
		return OutcomeNotApplicable, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve participant: %w", err)
	}

	unlock := s.locks.lock(teamID)
	defer unlock()

	t, err := s.store.TeamByID(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return OutcomeNotApplicable, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve team: %w", err)
	}
	if t.IsConfirmed {
		return OutcomeNotApplicable, nil
	}

	roster, err := s.store.TeamRoster(ctx, teamID)
	if err != nil {
		return "", fmt.Errorf("read roster: %w", err)
	}

	memberIdx := -1
	for i, d := range roster {
		if d.Participant.ID == p.ID {
			memberIdx = i
			break
		}
	}
	if memberIdx == -1 {
		return OutcomeNotApplicable, nil
	}

	if !accepted {
		if err := s.dissolve(ctx, teamID, roster); err != nil {
			return "", err
		}
		s.log.Info("team dissolved by decline", "team_id", teamID, "declined_by", p.ExternalID)
		return OutcomeDissolved, nil
	}

	if err := s.store.SetMemberConfirmed(ctx, teamID, p.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return OutcomeNotApplicable, nil
		}
		return "", fmt.Errorf("record accept: %w", err)
	}
	roster[memberIdx].Member.HasConfirmed = true

	if !allConfirmed(roster) {
		return OutcomeStillPending, nil
	}

	if err := s.store.SetTeamConfirmed(ctx, teamID); err != nil {
		return "", fmt.Errorf("confirm team: %w", err)
	}
	channelID, err := s.store.CreateChannel(ctx, teamID, fmt.Sprintf("team-%d", teamID))
	if err != nil {
		return "", fmt.Errorf("create team channel: %w", err)
	}
	if err := s.store.SetTeamChannel(ctx, teamID, channelID); err != nil {
		return "", fmt.Errorf("attach channel: %w", err)
	}

	s.notifier.TeamConfirmed(teamID, channelID, roster)
	s.log.Info("team confirmed", "team_id", teamID, "channel_id", channelID)
	return OutcomeConfirmed, nil
}

// TeamInfo returns a read-only snapshot of the team and its members.
func (s *Service) TeamInfo(ctx context.Context, teamID int64) (models.TeamInfo, error) {
	t, err := s.store.TeamByID(ctx, teamID)
	if err != nil {
		return models.TeamInfo{}, err
	}
	roster, err := s.store.TeamRoster(ctx, teamID)
	if err != nil {
		return models.TeamInfo{}, err
	}
	return snapshot(t.ID, t.CreatedAt, t.IsConfirmed, t.ChannelID, roster), nil
}

// ExpireStalePending dissolves pending teams older than the confirmation
// timeout, returning their members to the pool. A zero timeout disables the
// sweep. Returns how many teams were dissolved.
func (s *Service) ExpireStalePending(ctx context.Context) (int, error) {
	if s.cfg.ConfirmationTimeout == 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-s.cfg.ConfirmationTimeout)
	stale, err := s.store.PendingTeamsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale teams: %w", err)
	}

	dissolved := 0
	for _, t := range stale {
		unlock := s.locks.lock(t.ID)

		// Re-check under the lock; the team may have resolved since the
		// list was read.
		current, err := s.store.TeamByID(ctx, t.ID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && current.IsConfirmed) {
			unlock()
			continue
		}
		if err != nil {
			unlock()
			return dissolved, fmt.Errorf("recheck team %d: %w", t.ID, err)
		}

		roster, err := s.store.TeamRoster(ctx, t.ID)
		if err != nil {
			unlock()
			return dissolved, fmt.Errorf("read roster %d: %w", t.ID, err)
		}
		if err := s.dissolve(ctx, t.ID, roster); err != nil {
			unlock()
			return dissolved, err
		}
		unlock()

		dissolved++
		s.log.Info("stale team dissolved", "team_id", t.ID, "age", time.Since(t.CreatedAt).Round(time.Second))
	}
	return dissolved, nil
}

// dissolve deletes the team and returns its members to the pool. Must be
// called with the team's lock held.
func (s *Service) dissolve(ctx context.Context, teamID int64, roster []models.TeamMemberDetail) error {
	if err := s.store.DissolveTeam(ctx, teamID); err != nil {
		return fmt.Errorf("dissolve team: %w", err)
	}
	s.notifier.TeamDissolved(teamID, roster)
	return nil
}

// allConfirmed reports whether every membership has accepted. A team with
// no memberships is never considered confirmed.
func allConfirmed(roster []models.TeamMemberDetail) bool {
	if len(roster) == 0 {
		return false
	}
	for _, d := range roster {
		if !d.Member.HasConfirmed {
			return false
		}
	}
	return true
}

func snapshot(teamID int64, createdAt time.Time, confirmed bool, channelID *int64, roster []models.TeamMemberDetail) models.TeamInfo {
	info := models.TeamInfo{
		TeamID:      teamID,
		CreatedAt:   createdAt,
		IsConfirmed: confirmed,
		ChannelID:   channelID,
		Members:     make([]models.MemberInfo, 0, len(roster)),
	}
	for _, d := range roster {
		info.Members = append(info.Members, models.MemberInfo{
			ExternalID:   d.Participant.ExternalID,
			Username:     d.Participant.Username,
			Skill:        d.Participant.Skill,
			Experience:   d.Participant.Experience,
			HasConfirmed: d.Member.HasConfirmed,
		})
	}
	return info
}
