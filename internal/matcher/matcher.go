package matcher

import (
	"github.com/nikhil/teammatch/internal/models"
)

// fillMethod records how a team slot was satisfied. Slots are resolved in a
// fixed priority order: the skill's own queue, then a substitute from a
// skill not yet on the team, then a duplicate from the first non-empty
// queue.
type fillMethod int

const (
	fillDirect fillMethod = iota
	fillSubstituted
	fillDuplicated
	fillUnfillable
)

// Pool is a snapshot of the waiting participants partitioned into per-skill
// FIFO queues. It is consumed as teams are built and never touches the
// store; callers read the waiting list once per pass and apply side effects
// per emitted team.
type Pool struct {
	skills []string
	queues map[string][]models.Participant
}

// NewPool partitions waiting (already ordered oldest-registration-first)
// into one queue per required skill. A participant appears in exactly one
// queue; registration guarantees every waiting participant's skill is in
// the required set.
func NewPool(waiting []models.Participant, requiredSkills []string) *Pool {
	queues := make(map[string][]models.Participant, len(requiredSkills))
	for _, p := range waiting {
		queues[p.Skill] = append(queues[p.Skill], p)
	}
	return &Pool{skills: requiredSkills, queues: queues}
}

// Remaining reports how many participants are still queued.
func (p *Pool) Remaining() int {
	n := 0
	for _, s := range p.skills {
		n += len(p.queues[s])
	}
	return n
}

// BuildTeams drains the pool into as many full teams of teamSize as it can
// form, in deterministic order. No partial teams are returned.
func BuildTeams(waiting []models.Participant, requiredSkills []string, teamSize int) [][]models.Participant {
	pool := NewPool(waiting, requiredSkills)
	var teams [][]models.Participant
	for {
		team := pool.NextTeam(teamSize)
		if team == nil {
			return teams
		}
		teams = append(teams, team)
	}
}

// NextTeam forms one team from the pool, or returns nil when none can be
// formed. Members taken during an abandoned attempt are not re-queued; they
// keep their waiting status in the store and sit out the rest of the pass.
func (p *Pool) NextTeam(size int) []models.Participant {
	if p.Remaining() < size {
		return nil
	}

	team := make([]models.Participant, 0, size)
	for _, skill := range p.skills {
		member, method := p.fillSlot(skill, team)
		if method == fillUnfillable {
			break
		}
		team = append(team, member)
	}

	if len(team) < size {
		return p.finalSweep(size)
	}
	return team
}

// fillSlot resolves one required-skill slot.
func (p *Pool) fillSlot(skill string, team []models.Participant) (models.Participant, fillMethod) {
	if m, ok := p.take(skill); ok {
		return m, fillDirect
	}

	// Substitution: the first required skill, in configured order, that is
	// not yet represented on the team and still has someone queued.
	for _, other := range p.skills {
		if other == skill || teamHasSkill(team, other) {
			continue
		}
		if m, ok := p.take(other); ok {
			return m, fillSubstituted
		}
	}

	// Duplicate fill: head of the first non-empty queue, skill overlap
	// allowed.
	for _, other := range p.skills {
		if m, ok := p.take(other); ok {
			return m, fillDuplicated
		}
	}

	return models.Participant{}, fillUnfillable
}

// finalSweep collects everyone still queued, in configured skill order, and
// forms one team from the oldest entries, ignoring skill balance. Returns
// nil when fewer than size participants remain.
func (p *Pool) finalSweep(size int) []models.Participant {
	var remaining []models.Participant
	for _, skill := range p.skills {
		remaining = append(remaining, p.queues[skill]...)
	}
	if len(remaining) < size {
		return nil
	}

	team := remaining[:size]
	for _, m := range team {
		p.remove(m)
	}
	return team
}

func (p *Pool) take(skill string) (models.Participant, bool) {
	q := p.queues[skill]
	if len(q) == 0 {
		return models.Participant{}, false
	}
	p.queues[skill] = q[1:]
	return q[0], true
}

func (p *Pool) remove(member models.Participant) {
	q := p.queues[member.Skill]
	for i, m := range q {
		if m.ID == member.ID {
			p.queues[member.Skill] = append(q[:i:i], q[i+1:]...)
			return
		}
	}
}

func teamHasSkill(team []models.Participant, skill string) bool {
	for _, m := range team {
		if m.Skill == skill {
			return true
		}
	}
	return false
}
