package team

import "sync"

// teamLocks hands out one mutex per team id so accept/decline and the
// unanimity check for the same team never interleave. The map only ever
// holds teams touched by this process; entries are tiny and reused.
type teamLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func newTeamLocks() *teamLocks {
	return &teamLocks{m: make(map[int64]*sync.Mutex)}
}

// lock acquires the team's mutex and returns the unlock func.
func (l *teamLocks) lock(teamID int64) func() {
	l.mu.Lock()
	tm, ok := l.m[teamID]
	if !ok {
		tm = &sync.Mutex{}
		l.m[teamID] = tm
	}
	l.mu.Unlock()

	tm.Lock()
	return tm.Unlock
}
