package agent

import (
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// Values holds one Q-value per action, indexed by core.Action
type Values [core.NumActions]float64

// Max returns the largest value
func (v *Values) Max() float64 {
	best := v[0]
	for _, q := range v[1:] {
		if q > best {
			best = q
		}
	}
	return best
}

// Argmax returns the action with the largest value. Ties go to the lowest index.
func (v *Values) Argmax() core.Action {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return core.Action(best)
}

// QTable is a sparse table of action values keyed by observation. Rows are
// materialized as zeros on first access through Row.
type QTable struct {
	rows map[game.Observation]*Values
}

// NewQTable creates an empty table
func NewQTable() *QTable {
	return &QTable{rows: make(map[game.Observation]*Values)}
}

// Row returns the mutable row for obs, inserting a zero row if absent
func (q *QTable) Row(obs game.Observation) *Values {
	row, ok := q.rows[obs]
	if !ok {
		row = &Values{}
		q.rows[obs] = row
	}
	return row
}

// Peek returns a copy of the row for obs without inserting it.
// Unseen observations read as zeros.
func (q *QTable) Peek(obs game.Observation) (Values, bool) {
	row, ok := q.rows[obs]
	if !ok {
		return Values{}, false
	}
	return *row, true
}

// Len returns the number of materialized rows
func (q *QTable) Len() int {
	return len(q.rows)
}

// Range calls fn for every materialized row until fn returns false
func (q *QTable) Range(fn func(obs game.Observation, values Values) bool) {
	for obs, row := range q.rows {
		if !fn(obs, *row) {
			return
		}
	}
}
