package grouping

import "slices"

// Participant is one member of an engine's population. Its encounter set
// only grows; the engine keeps it symmetric across the population.
type Participant struct {
	id          int
	encountered map[int]struct{}
}

func newParticipant(id int) *Participant {
	return &Participant{
		id:          id,
		encountered: map[int]struct{}{},
	}
}

func (p *Participant) ID() int {
	return p.id
}

// Encounter records other in p's encounter set. It does not touch other;
// use the engine to record a mutual encounter.
func (p *Participant) Encounter(other *Participant) {
	p.encountered[other.id] = struct{}{}
}

func (p *Participant) HasEncountered(other *Participant) bool {
	_, ok := p.encountered[other.id]
	return ok
}

// Encountered returns the ids p has shared a team with, ascending.
func (p *Participant) Encountered() []int {
	ids := make([]int, 0, len(p.encountered))
	for id := range p.encountered {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func meet(a, b *Participant) {
	a.Encounter(b)
	b.Encounter(a)
}
