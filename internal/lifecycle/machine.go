// Package lifecycle holds the status graphs for appointments, orders and
// laundry jobs together with the roles allowed to walk each edge.
package lifecycle

import (
	"fmt"

	"github.com/washline/laundry-service/internal/domain"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// Edge is a permitted status change. Roles may always take it; OwnerRoles
// may take it only when the actor owns the entity.
type Edge[S ~string] struct {
	From       S
	To         S
	Roles      []domain.Role
	OwnerRoles []domain.Role
}

// Actor describes who requests a transition.
type Actor struct {
	Role domain.Role
	Owns bool
}

type edgeKey[S ~string] struct {
	from S
	to   S
}

// Machine validates transitions for one entity kind.
type Machine[S ~string] struct {
	entity   string
	edges    []Edge[S]
	index    map[edgeKey[S]]Edge[S]
	terminal map[S]struct{}
}

// NewMachine builds a machine from its edge list and terminal statuses.
func NewMachine[S ~string](entity string, terminal []S, edges ...Edge[S]) *Machine[S] {
	m := &Machine[S]{
		entity:   entity,
		edges:    edges,
		index:    make(map[edgeKey[S]]Edge[S], len(edges)),
		terminal: make(map[S]struct{}, len(terminal)),
	}
	for _, e := range edges {
		m.index[edgeKey[S]{e.From, e.To}] = e
	}
	for _, s := range terminal {
		m.terminal[s] = struct{}{}
	}
	return m
}

// Entity returns the entity name used in errors and metrics.
func (m *Machine[S]) Entity() string { return m.entity }

// IsTerminal reports whether no edge leaves status.
func (m *Machine[S]) IsTerminal(status S) bool {
	_, ok := m.terminal[status]
	return ok
}

// Next lists the statuses reachable in one step from status, in declaration order.
func (m *Machine[S]) Next(status S) []S {
	var next []S
	for _, e := range m.edges {
		if e.From == status {
			next = append(next, e.To)
		}
	}
	return next
}

// Check validates moving from one status to another on behalf of actor.
// Terminal sources fail with TERMINAL_STATE, unknown edges with
// INVALID_TRANSITION and role mismatches with FORBIDDEN.
func (m *Machine[S]) Check(from, to S, actor Actor) error {
	if m.IsTerminal(from) {
		return apperrors.NewTerminalState(
			fmt.Sprintf("%s is %s and cannot change status", m.entity, from),
			map[string]any{"from": string(from), "to": string(to)},
		)
	}
	edge, ok := m.index[edgeKey[S]{from, to}]
	if !ok {
		return apperrors.NewInvalidTransition(
			fmt.Sprintf("%s cannot move from %s to %s", m.entity, from, to),
			map[string]any{"from": string(from), "to": string(to), "allowed": toStrings(m.Next(from))},
		)
	}
	if hasRole(edge.Roles, actor.Role) || (actor.Owns && hasRole(edge.OwnerRoles, actor.Role)) {
		return nil
	}
	return apperrors.NewForbidden(fmt.Sprintf("role %s may not move %s from %s to %s", actor.Role, m.entity, from, to))
}

func hasRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func toStrings[S ~string](values []S) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}
