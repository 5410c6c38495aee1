package engine

import (
	"strings"

	"github.com/google/uuid"
)

// keyMap links dependent-sheet rows to the employees created from the
// primary sheet. It is scoped to one import run and discarded afterward.
//
// Lookup is by lower-cased email (the natural key). Sheets that carry no
// email column at all fall back to positional linkage: the Nth dependent
// row attaches to the Nth successfully created employee. Rows that fail in
// the primary sheet never enter the map, so dependent rows pointing at them
// fail with an unresolved-parent error rather than linking silently wrong.
type keyMap struct {
	byEmail    map[string]uuid.UUID
	positional []uuid.UUID
}

func newKeyMap() *keyMap {
	return &keyMap{byEmail: make(map[string]uuid.UUID)}
}

// register records a successfully created employee under its email and
// appends it to the positional list.
func (m *keyMap) register(email string, id uuid.UUID) {
	m.byEmail[strings.ToLower(strings.TrimSpace(email))] = id
	m.positional = append(m.positional, id)
}

// byKey resolves a parent by email.
func (m *keyMap) byKey(email string) (uuid.UUID, bool) {
	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	return id, ok
}

// byPosition resolves a parent by row index, for sheets aligned
// row-for-row with the primary sheet.
func (m *keyMap) byPosition(index int) (uuid.UUID, bool) {
	if index < 0 || index >= len(m.positional) {
		return uuid.Nil, false
	}
	return m.positional[index], true
}

func (m *keyMap) size() int {
	return len(m.positional)
}
