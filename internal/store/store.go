package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nikhil/teammatch/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the typed persistence layer over MySQL.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ---------------- Participants ----------------

// UpsertParticipant creates a participant or, if the external id is already
// registered, updates skill/experience and returns them to the waiting
// pool. The registration timestamp is preserved on update so queue
// seniority is not lost.
func (s *Store) UpsertParticipant(ctx context.Context, p models.Participant) (models.Participant, error) {
	existing, err := s.ParticipantByExternalID(ctx, p.ExternalID)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx,
			`UPDATE participants SET username = ?, skill = ?, experience = ?, is_waiting = TRUE WHERE id = ?`,
			p.Username, p.Skill, p.Experience, existing.ID,
		)
		if err != nil {
			return models.Participant{}, fmt.Errorf("update participant: %w", err)
		}
		existing.Username = p.Username
		existing.Skill = p.Skill
		existing.Experience = p.Experience
		existing.IsWaiting = true
		return existing, nil

	case errors.Is(err, ErrNotFound):
		p.RegisteredAt = time.Now().UTC()
		p.IsWaiting = true
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO participants (external_id, username, skill, experience, registered_at, is_waiting)
			 VALUES (?, ?, ?, ?, ?, TRUE)`,
			p.ExternalID, p.Username, p.Skill, p.Experience, p.RegisteredAt,
		)
		if err != nil {
			return models.Participant{}, fmt.Errorf("insert participant: %w", err)
		}
		p.ID, err = res.LastInsertId()
		if err != nil {
			return models.Participant{}, fmt.Errorf("participant id: %w", err)
		}
		return p, nil

	default:
		return models.Participant{}, err
	}
}

// ParticipantByExternalID looks a participant up by their transport-level
// identity.
func (s *Store) ParticipantByExternalID(ctx context.Context, externalID int64) (models.Participant, error) {
	return s.scanParticipant(s.db.QueryRowContext(ctx,
		`SELECT id, external_id, username, skill, experience, registered_at, is_waiting
		 FROM participants WHERE external_id = ?`, externalID))
}

// WaitingParticipants returns the waiting pool, oldest registration first.
// Ties on the timestamp break on insertion order.
func (s *Store) WaitingParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_id, username, skill, experience, registered_at, is_waiting
		 FROM participants WHERE is_waiting = TRUE
		 ORDER BY registered_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query waiting participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		p, err := s.scanParticipantRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ActiveTeamID returns the team the participant currently belongs to, or
// ErrNotFound when they hold no membership.
func (s *Store) ActiveTeamID(ctx context.Context, participantID int64) (int64, error) {
	var teamID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT team_id FROM team_members WHERE participant_id = ? LIMIT 1`,
		participantID,
	).Scan(&teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query active team: %w", err)
	}
	return teamID, nil
}

// ---------------- Teams ----------------

// CreateTeam inserts a team with its full membership and takes every member
// out of the waiting pool, all in one transaction.
func (s *Store) CreateTeam(ctx context.Context, memberIDs []int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create team: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO teams (created_at, is_confirmed) VALUES (?, FALSE)`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert team: %w", err)
	}
	teamID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("team id: %w", err)
	}

	for _, id := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, participant_id, has_confirmed) VALUES (?, ?, FALSE)`,
			teamID, id,
		); err != nil {
			return 0, fmt.Errorf("insert member %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE participants SET is_waiting = FALSE WHERE id = ?`, id,
		); err != nil {
			return 0, fmt.Errorf("mark member %d placed: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create team: %w", err)
	}
	return teamID, nil
}

// TeamByID fetches one team row.
func (s *Store) TeamByID(ctx context.Context, teamID int64) (models.Team, error) {
	var t models.Team
	var channelID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, is_confirmed, channel_id FROM teams WHERE id = ?`, teamID,
	).Scan(&t.ID, &t.CreatedAt, &t.IsConfirmed, &channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Team{}, ErrNotFound
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("query team: %w", err)
	}
	if channelID.Valid {
		t.ChannelID = &channelID.Int64
	}
	return t, nil
}

// TeamRoster returns the team's memberships joined with their participants,
// in membership insertion order.
func (s *Store) TeamRoster(ctx context.Context, teamID int64) ([]models.TeamMemberDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tm.id, tm.team_id, tm.participant_id, tm.has_confirmed,
		        p.id, p.external_id, p.username, p.skill, p.experience, p.registered_at, p.is_waiting
		 FROM team_members tm
		 JOIN participants p ON p.id = tm.participant_id
		 WHERE tm.team_id = ?
		 ORDER BY tm.id ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var out []models.TeamMemberDetail
	for rows.Next() {
		var d models.TeamMemberDetail
		if err := rows.Scan(
			&d.Member.ID, &d.Member.TeamID, &d.Member.ParticipantID, &d.Member.HasConfirmed,
			&d.Participant.ID, &d.Participant.ExternalID, &d.Participant.Username,
			&d.Participant.Skill, &d.Participant.Experience,
			&d.Participant.RegisteredAt, &d.Participant.IsWaiting,
		); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetMemberConfirmed flags one membership as accepted.
func (s *Store) SetMemberConfirmed(ctx context.Context, teamID, participantID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE team_members SET has_confirmed = TRUE WHERE team_id = ? AND participant_id = ?`,
		teamID, participantID,
	)
	if err != nil {
		return fmt.Errorf("confirm member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTeamConfirmed marks the team as confirmed.
func (s *Store) SetTeamConfirmed(ctx context.Context, teamID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE teams SET is_confirmed = TRUE WHERE id = ?`, teamID)
	if err != nil {
		return fmt.Errorf("confirm team: %w", err)
	}
	return nil
}

// SetTeamChannel records the team's chat channel reference.
func (s *Store) SetTeamChannel(ctx context.Context, teamID, channelID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE teams SET channel_id = ? WHERE id = ?`, channelID, teamID)
	if err != nil {
		return fmt.Errorf("set team channel: %w", err)
	}
	return nil
}

// DissolveTeam returns every member to the waiting pool and deletes the
// membership rows before the team row, in one transaction. Registration
// timestamps are untouched so returned members keep their seniority.
func (s *Store) DissolveTeam(ctx context.Context, teamID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dissolve: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE participants p
		 JOIN team_members tm ON tm.participant_id = p.id
		 SET p.is_waiting = TRUE
		 WHERE tm.team_id = ?`, teamID,
	); err != nil {
		return fmt.Errorf("return members to pool: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = ?`, teamID,
	); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM teams WHERE id = ?`, teamID,
	); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dissolve: %w", err)
	}
	return nil
}

// PendingTeamsBefore lists unconfirmed teams created before the cutoff.
func (s *Store) PendingTeamsBefore(ctx context.Context, cutoff time.Time) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, is_confirmed, channel_id
		 FROM teams WHERE is_confirmed = FALSE AND created_at < ?
		 ORDER BY id ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query pending teams: %w", err)
	}
	defer rows.Close()

	var out []models.Team
	for rows.Next() {
		var t models.Team
		var channelID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.CreatedAt, &t.IsConfirmed, &channelID); err != nil {
			return nil, fmt.Errorf("scan pending team: %w", err)
		}
		if channelID.Valid {
			t.ChannelID = &channelID.Int64
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ---------------- Channels & messages ----------------

// CreateChannel creates the chat channel for a confirmed team.
func (s *Store) CreateChannel(ctx context.Context, teamID int64, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (team_id, channel_name, created_at) VALUES (?, ?, ?)`,
		teamID, name, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert channel: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("channel id: %w", err)
	}
	return id, nil
}

// ChannelByTeam returns the team's channel.
func (s *Store) ChannelByTeam(ctx context.Context, teamID int64) (models.Channel, error) {
	var c models.Channel
	err := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, channel_name, created_at FROM channels WHERE team_id = ?`, teamID,
	).Scan(&c.ChannelID, &c.TeamID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Channel{}, ErrNotFound
	}
	if err != nil {
		return models.Channel{}, fmt.Errorf("query channel: %w", err)
	}
	return c, nil
}

// SaveMessage persists a chat message and returns its id.
func (s *Store) SaveMessage(ctx context.Context, msg models.ChatMessage) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (channel_id, participant_id, content, created_at) VALUES (?, ?, ?, ?)`,
		msg.ChannelID, msg.ParticipantID, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("message id: %w", err)
	}
	return id, nil
}

// MessagesByChannel returns the most recent messages, oldest first.
func (s *Store) MessagesByChannel(ctx context.Context, channelID int64, limit int) ([]models.ChatMessage, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.channel_id, m.participant_id, p.username, m.content, m.created_at
		 FROM (SELECT * FROM messages WHERE channel_id = ? ORDER BY id DESC LIMIT ?) m
		 JOIN participants p ON p.id = m.participant_id
		 ORDER BY m.id ASC`, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.ParticipantID, &m.Username, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---------------- scanning helpers ----------------

func (s *Store) scanParticipant(row *sql.Row) (models.Participant, error) {
	var p models.Participant
	err := row.Scan(&p.ID, &p.ExternalID, &p.Username, &p.Skill, &p.Experience, &p.RegisteredAt, &p.IsWaiting)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("scan participant: %w", err)
	}
	return p, nil
}

func (s *Store) scanParticipantRows(rows *sql.Rows) (models.Participant, error) {
	var p models.Participant
	if err := rows.Scan(&p.ID, &p.ExternalID, &p.Username, &p.Skill, &p.Experience, &p.RegisteredAt, &p.IsWaiting); err != nil {
		return models.Participant{}, fmt.Errorf("scan participant: %w", err)
	}
	return p, nil
}
