package storytree

import (
	"fmt"

	"github.com/google/uuid"
)

// IDFunc returns a fresh, globally unique id on every call.
type IDFunc func() string

// DefaultID mints a random UUID.
func DefaultID() string {
	return uuid.NewString()
}

// ChoiceKey identifies a choice by its owning node, which is also how edges
// refer to it. Generators only promise choice ids unique within one response,
// so the node id is part of the key.
type ChoiceKey struct {
	NodeID   string
	ChoiceID string
}

// Mapping records every placeholder → canonical id rewrite of one run.
type Mapping struct {
	Nodes      map[string]string
	Choices    map[ChoiceKey]string
	Characters map[string]string
	Locations  map[string]string
}

// Canonicalize returns a copy of story where every node, choice, character
// and location id is replaced by a fresh id from newID, with nextNodeId and
// edge endpoints rewritten to match. A nil newID uses random UUIDs.
//
// All mappings are built before anything is rewritten, so a choice may point
// at a node that appears later in the list. The input story is never
// modified; on error nothing of the rewrite escapes.
//
// story must have passed Validate. A repeated placeholder id, or a reference
// to an id that was never mapped, returns an *InvariantViolation.
func Canonicalize(story Story, newID IDFunc) (Story, Mapping, error) {
	if newID == nil {
		newID = DefaultID
	}

	m := Mapping{
		Nodes:      make(map[string]string, len(story.Tree.Nodes)),
		Choices:    make(map[ChoiceKey]string),
		Characters: make(map[string]string, len(story.Characters)),
		Locations:  make(map[string]string, len(story.Locations)),
	}

	for _, n := range story.Tree.Nodes {
		if _, dup := m.Nodes[n.ID]; dup {
			return Story{}, Mapping{}, &InvariantViolation{Kind: "node", ID: n.ID, Msg: fmt.Sprintf("duplicate node id %q", n.ID)}
		}
		m.Nodes[n.ID] = newID()
	}
	for _, n := range story.Tree.Nodes {
		for _, c := range n.Choices {
			key := ChoiceKey{NodeID: n.ID, ChoiceID: c.ID}
			if _, dup := m.Choices[key]; dup {
				return Story{}, Mapping{}, &InvariantViolation{
					Kind: "choice",
					ID:   c.ID,
					Msg:  fmt.Sprintf("duplicate choice id %q in node %q", c.ID, n.ID),
				}
			}
			m.Choices[key] = newID()
		}
	}
	for _, ch := range story.Characters {
		if _, dup := m.Characters[ch.ID]; dup {
			return Story{}, Mapping{}, &InvariantViolation{Kind: "character", ID: ch.ID, Msg: fmt.Sprintf("duplicate character id %q", ch.ID)}
		}
		m.Characters[ch.ID] = newID()
	}
	for _, loc := range story.Locations {
		if _, dup := m.Locations[loc.ID]; dup {
			return Story{}, Mapping{}, &InvariantViolation{Kind: "location", ID: loc.ID, Msg: fmt.Sprintf("duplicate location id %q", loc.ID)}
		}
		m.Locations[loc.ID] = newID()
	}

	out := story.Clone()

	for i := range out.Tree.Nodes {
		node := &out.Tree.Nodes[i]
		oldNodeID := node.ID
		node.ID = m.Nodes[oldNodeID]

		for j := range node.Choices {
			c := &node.Choices[j]
			c.ID = m.Choices[ChoiceKey{NodeID: oldNodeID, ChoiceID: c.ID}]
			target, ok := c.Next()
			if !ok {
				continue
			}
			next, ok := m.Nodes[target]
			if !ok {
				return Story{}, Mapping{}, &InvariantViolation{
					Kind: "node",
					ID:   target,
					Msg:  fmt.Sprintf("choice in node %q points to unmapped node %q", oldNodeID, target),
				}
			}
			c.NextNodeID = &next
		}
	}

	for i := range out.Tree.Edges {
		e := &out.Tree.Edges[i]
		from, ok := m.Nodes[e.From]
		if !ok {
			return Story{}, Mapping{}, &InvariantViolation{Kind: "edge_from", ID: e.From}
		}
		to, ok := m.Nodes[e.To]
		if !ok {
			return Story{}, Mapping{}, &InvariantViolation{Kind: "edge_to", ID: e.To}
		}
		choice, ok := m.Choices[ChoiceKey{NodeID: e.From, ChoiceID: e.ChoiceID}]
		if !ok {
			return Story{}, Mapping{}, &InvariantViolation{
				Kind: "edge_choice",
				ID:   e.ChoiceID,
				Msg:  fmt.Sprintf("edge from %q names choice %q which that node does not have", e.From, e.ChoiceID),
			}
		}
		e.From, e.To, e.ChoiceID = from, to, choice
	}

	for i := range out.Characters {
		out.Characters[i].ID = m.Characters[out.Characters[i].ID]
	}
	for i := range out.Locations {
		out.Locations[i].ID = m.Locations[out.Locations[i].ID]
	}

	return out, m, nil
}
