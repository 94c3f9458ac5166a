// Package grouping partitions a fixed population into equal-size teams,
// round after round, so that no two participants share a team twice.
//
// Placement is a single first-fit pass: participants in ascending id order,
// each into the lowest-indexed team that has room and holds nobody it has
// met. The pass never backtracks, so it can report a round as infeasible
// even when some other partition would exist.
package grouping

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Team is an ordered list of participant ids.
type Team []int

// Partition is the result of one MakeTeams call. Ownership passes to the
// caller; the engine keeps no reference to it.
type Partition struct {
	Teams []Team
}

// TeamSize returns the number of participants per team.
func (p Partition) TeamSize() int {
	if len(p.Teams) == 0 {
		return 0
	}
	return len(p.Teams[0])
}

type Engine struct {
	mu           sync.Mutex
	participants []*Participant
	policy       CommitPolicy
	logger       *zap.Logger
}

// New builds a population of participantsCount participants with ids
// 0..participantsCount-1 and empty encounter sets.
func New(participantsCount int, opts ...Option) (*Engine, error) {
	if participantsCount <= 0 {
		return nil, fmt.Errorf("%w: participants count must be positive, got %d", ErrInvalidArgument, participantsCount)
	}
	e := &Engine{
		participants: make([]*Participant, participantsCount),
		policy:       CommitAtomic,
		logger:       zap.NewNop(),
	}
	for i := range participantsCount {
		e.participants[i] = newParticipant(i)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) ParticipantsCount() int {
	return len(e.participants)
}

// Participant returns the participant with the given id. Reads through it
// are not synchronized with MakeTeams; use Encountered for that.
func (e *Engine) Participant(id int) (*Participant, bool) {
	if id < 0 || id >= len(e.participants) {
		return nil, false
	}
	return e.participants[id], true
}

// Encountered returns the sorted ids participant id has met. It takes the
// engine lock, so it is safe to call while other goroutines make teams.
func (e *Engine) Encountered(id int) ([]int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.Participant(id)
	if !ok {
		return nil, false
	}
	return p.Encountered(), true
}

func (e *Engine) validate(teamsCount int) error {
	n := len(e.participants)
	if teamsCount <= 0 {
		return fmt.Errorf("%w: teams count must be positive, got %d", ErrInvalidArgument, teamsCount)
	}
	if teamsCount > n {
		return fmt.Errorf("%w: not enough participants: %d teams from %d participants", ErrInvalidArgument, teamsCount, n)
	}
	if n%teamsCount != 0 {
		return fmt.Errorf("%w: cannot make even teams: %d participants into %d teams", ErrInvalidArgument, n, teamsCount)
	}
	return nil
}

// MakeTeams produces one partition into teamsCount teams of equal size and
// records every new pairing as an encounter.
//
// It returns an error wrapping ErrInvalidArgument before touching any state
// when teamsCount is not positive, exceeds the population, or does not
// divide it. It returns an *AssignmentError when some participant fits no
// team; what the failed pass leaves recorded depends on the CommitPolicy.
func (e *Engine) MakeTeams(teamsCount int) (Partition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.validate(teamsCount); err != nil {
		return Partition{}, err
	}

	teamSize := len(e.participants) / teamsCount
	teams := make([][]*Participant, teamsCount)
	for i := range teams {
		teams[i] = make([]*Participant, 0, teamSize)
	}

	for _, p := range e.participants {
		t := e.firstEligible(teams, p, teamSize)
		if t < 0 {
			e.logger.Info("team assignment infeasible",
				zap.Int("participant", p.id),
				zap.Int("teams_count", teamsCount),
				zap.Stringer("commit_policy", e.policy))
			return Partition{}, &AssignmentError{ParticipantID: p.id, TeamsCount: teamsCount}
		}
		if e.policy == CommitIncremental {
			for _, other := range teams[t] {
				meet(p, other)
			}
		}
		teams[t] = append(teams[t], p)
	}

	if e.policy == CommitAtomic {
		for _, team := range teams {
			for i, a := range team {
				for _, b := range team[i+1:] {
					meet(a, b)
				}
			}
		}
	}

	result := Partition{Teams: make([]Team, teamsCount)}
	for i, team := range teams {
		ids := make(Team, len(team))
		for j, p := range team {
			ids[j] = p.id
		}
		result.Teams[i] = ids
	}

	e.logger.Debug("teams made",
		zap.Int("teams_count", teamsCount),
		zap.Int("team_size", teamSize))
	return result, nil
}

// firstEligible returns the lowest team index that has room for p and holds
// nobody p has met, or -1.
func (e *Engine) firstEligible(teams [][]*Participant, p *Participant, teamSize int) int {
	for t, members := range teams {
		if len(members) == teamSize {
			continue
		}
		met := false
		for _, other := range members {
			if p.HasEncountered(other) {
				met = true
				break
			}
		}
		if !met {
			return t
		}
	}
	return -1
}
