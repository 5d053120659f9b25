package systems

import (
	"fmt"
	"strings"
)

// NeighborSet is a bitset over Moore-neighborhood counts 0..8.
type NeighborSet uint16

// NewNeighborSet builds a set from the given counts.
// Counts outside 0..8 panic since rule tables are compiled in.
func NewNeighborSet(counts ...int) NeighborSet {
	var s NeighborSet
	for _, n := range counts {
		if n < 0 || n > 8 {
			panic(fmt.Sprintf("systems: neighbor count %d out of range", n))
		}
		s |= 1 << n
	}
	return s
}

// Has reports whether n is in the set.
func (s NeighborSet) Has(n int) bool { return s&(1<<n) != 0 }

func (s NeighborSet) digits() string {
	var b strings.Builder
	for n := 0; n <= 8; n++ {
		if s.Has(n) {
			b.WriteByte(byte('0' + n))
		}
	}
	return b.String()
}

// RuleID identifies a rule table in the catalog.
type RuleID uint8

const (
	RuleConway RuleID = iota
	RuleHighLife
	RuleDayNight
	RuleSeeds
	RuleMaze
	RuleMorley
)

// RuleSet is an immutable birth/survive predicate pair.
type RuleSet struct {
	ID          RuleID
	Name        string
	Description string
	Birth       NeighborSet
	Survive     NeighborSet
}

// Notation renders the rule in B/S form, e.g. "B3/S23".
func (r RuleSet) Notation() string {
	return "B" + r.Birth.digits() + "/S" + r.Survive.digits()
}

// Next reports whether a cell is alive next generation.
func (r RuleSet) Next(alive bool, neighbors int) bool {
	if alive {
		return r.Survive.Has(neighbors)
	}
	return r.Birth.Has(neighbors)
}

// catalog is the fixed, ordered rule list. Index order is the public
// selection order.
var catalog = []RuleSet{
	{
		ID:          RuleConway,
		Name:        "Conway",
		Description: "Conway's Game of Life: balanced growth, gliders and still lifes",
		Birth:       NewNeighborSet(3),
		Survive:     NewNeighborSet(2, 3),
	},
	{
		ID:          RuleHighLife,
		Name:        "HighLife",
		Description: "Life with an extra birth on six neighbors; supports replicators",
		Birth:       NewNeighborSet(3, 6),
		Survive:     NewNeighborSet(2, 3),
	},
	{
		ID:          RuleDayNight,
		Name:        "Day & Night",
		Description: "Symmetric under inversion: live and dead regions behave alike",
		Birth:       NewNeighborSet(3, 6, 7, 8),
		Survive:     NewNeighborSet(3, 4, 6, 7, 8),
	},
	{
		ID:          RuleSeeds,
		Name:        "Seeds",
		Description: "Every live cell dies each step; explosive, chaotic growth",
		Birth:       NewNeighborSet(2),
		Survive:     NewNeighborSet(),
	},
	{
		ID:          RuleMaze,
		Name:        "Maze",
		Description: "Grows corridor-like maze structures that rarely die",
		Birth:       NewNeighborSet(3),
		Survive:     NewNeighborSet(1, 2, 3, 4, 5),
	},
	{
		ID:          RuleMorley,
		Name:        "Morley",
		Description: "Move: rich in ships and puffers",
		Birth:       NewNeighborSet(3, 6, 8),
		Survive:     NewNeighborSet(2, 4, 5),
	},
}

// Rules returns the rule catalog in selection order.
func Rules() []RuleSet {
	return catalog
}

// RuleRegistry tracks which catalog entry is active.
// It holds no simulation state.
type RuleRegistry struct {
	rules  []RuleSet
	active int
}

// NewRuleRegistry creates a registry with the given rule active.
func NewRuleRegistry(initial int) *RuleRegistry {
	r := &RuleRegistry{rules: catalog}
	r.Select(initial)
	return r
}

// Select switches the active rule. An out-of-range index is a caller bug
// and panics.
func (r *RuleRegistry) Select(index int) *RuleSet {
	if index < 0 || index >= len(r.rules) {
		panic(fmt.Sprintf("systems: rule index %d out of range [0,%d)", index, len(r.rules)))
	}
	r.active = index
	return &r.rules[index]
}

// Active returns the active rule.
func (r *RuleRegistry) Active() *RuleSet { return &r.rules[r.active] }

// ActiveIndex returns the active rule's catalog index.
func (r *RuleRegistry) ActiveIndex() int { return r.active }

// Notation returns the active rule's B/S notation.
func (r *RuleRegistry) Notation() string { return r.Active().Notation() }

// Description returns the active rule's human description.
func (r *RuleRegistry) Description() string { return r.Active().Description }

// Len returns the catalog size.
func (r *RuleRegistry) Len() int { return len(r.rules) }

// Lookup resolves a rule name or B/S notation (case-insensitive) to its
// catalog index.
func (r *RuleRegistry) Lookup(key string) (int, bool) {
	key = strings.TrimSpace(key)
	for i, rule := range r.rules {
		if strings.EqualFold(rule.Notation(), key) || strings.EqualFold(rule.Name, key) {
			return i, true
		}
	}
	return 0, false
}
