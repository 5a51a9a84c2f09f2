package storytree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// NodeType is the role a scene plays in the story flow.
type NodeType string

const (
	NodeStart      NodeType = "start"
	NodeNormal     NodeType = "normal"
	NodeChoice     NodeType = "choice"
	NodeGoodEnding NodeType = "good_ending"
	NodeBadEnding  NodeType = "bad_ending"
)

// NodeTypes lists every accepted node type in display order.
var NodeTypes = []NodeType{NodeStart, NodeNormal, NodeChoice, NodeGoodEnding, NodeBadEnding}

func (t NodeType) Valid() bool {
	return slices.Contains(NodeTypes, t)
}

// Ending reports whether the node terminates a reading path.
func (t NodeType) Ending() bool {
	return t == NodeGoodEnding || t == NodeBadEnding
}

func (t *NodeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &PayloadError{Field: "type", Err: err}
	}
	if v := NodeType(s); v.Valid() {
		*t = v
		return nil
	}
	return &PayloadError{Field: "type", Msg: fmt.Sprintf("unknown node type %q, want one of %v", s, NodeTypes)}
}

// StoryStatus tracks a story through the authoring workflow.
type StoryStatus string

const (
	StatusDraft              StoryStatus = "draft"
	StatusStructureFinalized StoryStatus = "structure_finalized"
	StatusCompleted          StoryStatus = "completed"
)

func (s StoryStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusStructureFinalized, StatusCompleted:
		return true
	}
	return false
}

func (s *StoryStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return &PayloadError{Field: "status", Err: err}
	}
	if st := StoryStatus(v); st.Valid() {
		*s = st
		return nil
	}
	return &PayloadError{Field: "status", Msg: fmt.Sprintf("unknown story status %q", v)}
}

type Choice struct {
	ID         string  `json:"id" jsonschema_description:"Placeholder choice id, e.g. choice_1"`
	Text       string  `json:"text" jsonschema_description:"Player-facing text of the option"`
	NextNodeID *string `json:"nextNodeId" jsonschema:"nullable" jsonschema_description:"Id of the node this choice leads to, null for terminal choices"`
	IsCorrect  bool    `json:"isCorrect" jsonschema_description:"Whether this choice leads toward the good outcome"`
}

type choiceAlias struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	NextNodeID *string `json:"nextNodeId"`
	IsCorrect  *bool   `json:"isCorrect"`
}

// UnmarshalJSON treats an omitted isCorrect as true, matching what generators
// leave out for the single-path choices. Unknown keys are rejected.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var a choiceAlias
	if err := decodeStrict(data, &a); err != nil {
		return &PayloadError{Field: "choice", Err: err}
	}

	c.ID = a.ID
	c.Text = a.Text
	c.NextNodeID = a.NextNodeID
	if a.NextNodeID != nil && *a.NextNodeID == "" {
		c.NextNodeID = nil
	}
	c.IsCorrect = a.IsCorrect == nil || *a.IsCorrect

	return nil
}

// Next returns the target node id and whether the choice has one.
func (c Choice) Next() (string, bool) {
	if c.NextNodeID == nil {
		return "", false
	}
	return *c.NextNodeID, true
}

type Node struct {
	ID          string   `json:"id" jsonschema_description:"Placeholder node id, e.g. node_1"`
	SceneNumber int      `json:"sceneNumber" jsonschema:"minimum=1" jsonschema_description:"Display order of the scene, starting at 1"`
	Title       string   `json:"title" jsonschema_description:"Short scene title"`
	Text        string   `json:"text" jsonschema_description:"Narrative text read to the child"`
	Location    string   `json:"location" jsonschema_description:"Name of the location where the scene happens"`
	Type        NodeType `json:"type" jsonschema:"enum=start,enum=normal,enum=choice,enum=good_ending,enum=bad_ending" jsonschema_description:"Role of the scene in the story flow"`
	Choices     []Choice `json:"choices" jsonschema_description:"Options offered at the end of the scene, empty for endings"`
}

type Edge struct {
	From     string `json:"from" jsonschema_description:"Id of the node the choice belongs to"`
	To       string `json:"to" jsonschema_description:"Id of the node the choice leads to"`
	ChoiceID string `json:"choiceId" jsonschema_description:"Id of the choice that triggers the transition"`
}

type edgeAlias struct {
	From     string `json:"from"`
	FromAlt  string `json:"from_"`
	To       string `json:"to"`
	ChoiceID string `json:"choiceId"`
}

// UnmarshalJSON also accepts "from_", which some generators emit to dodge the
// reserved word in their own tooling. Unknown keys are rejected.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var a edgeAlias
	if err := decodeStrict(data, &a); err != nil {
		return &PayloadError{Field: "edge", Err: err}
	}

	e.From = a.From
	if e.From == "" {
		e.From = a.FromAlt
	}
	e.To = a.To
	e.ChoiceID = a.ChoiceID

	return nil
}

type Tree struct {
	Nodes []Node `json:"nodes" jsonschema_description:"Every scene of the story"`
	Edges []Edge `json:"edges" jsonschema_description:"One edge per choice that leads to another scene"`
}

// StartNode returns the first node of type start.
func (t Tree) StartNode() (Node, bool) {
	for _, n := range t.Nodes {
		if n.Type == NodeStart {
			return n, true
		}
	}
	return Node{}, false
}

type CharacterRole struct {
	ID          string `json:"id" jsonschema_description:"Placeholder character id, e.g. char_1"`
	Role        string `json:"role" jsonschema_description:"Role name, e.g. Protagonist or Wise guide"`
	Description string `json:"description" jsonschema_description:"One-sentence description of the role"`
}

type Location struct {
	ID           string `json:"id" jsonschema_description:"Placeholder location id, e.g. loc_1"`
	Name         string `json:"name" jsonschema_description:"Location name as used by the scenes"`
	SceneNumbers []int  `json:"sceneNumbers" jsonschema_description:"Scene numbers that take place here"`
	Description  string `json:"description" jsonschema_description:"Visual description of the location"`
}

// Generated is the payload returned by the story generator, before any
// validation or id rewriting.
type Generated struct {
	Tree       Tree            `json:"tree" jsonschema_description:"Branching story tree"`
	Characters []CharacterRole `json:"characters" jsonschema_description:"Character roles appearing in the story"`
	Locations  []Location      `json:"locations" jsonschema_description:"Locations used by the scenes"`
}

type Story struct {
	ID          string          `json:"id"`
	Lesson      string          `json:"lesson"`
	Theme       string          `json:"theme"`
	StoryFormat string          `json:"storyFormat"`
	Status      StoryStatus     `json:"status"`
	Tree        Tree            `json:"tree"`
	Characters  []CharacterRole `json:"characters"`
	Locations   []Location      `json:"locations"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy of the story. Edits on the copy never reach the
// receiver's slices or pointers.
func (s Story) Clone() Story {
	out := s
	out.Tree = s.Tree.Clone()
	out.Characters = append([]CharacterRole(nil), s.Characters...)
	out.Locations = make([]Location, len(s.Locations))
	for i, loc := range s.Locations {
		loc.SceneNumbers = append([]int(nil), loc.SceneNumbers...)
		out.Locations[i] = loc
	}
	if s.Locations == nil {
		out.Locations = nil
	}
	return out
}

func (t Tree) Clone() Tree {
	var out Tree
	if t.Nodes != nil {
		out.Nodes = make([]Node, len(t.Nodes))
		for i, n := range t.Nodes {
			if n.Choices != nil {
				choices := make([]Choice, len(n.Choices))
				for j, c := range n.Choices {
					if c.NextNodeID != nil {
						next := *c.NextNodeID
						c.NextNodeID = &next
					}
					choices[j] = c
				}
				n.Choices = choices
			}
			out.Nodes[i] = n
		}
	}
	out.Edges = append([]Edge(nil), t.Edges...)
	return out
}

// decodeStrict decodes into the alias structs behind the custom unmarshalers
// with the same unknown-field policy the payload decoder applies elsewhere.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Ptr is a small helper for building choices in code.
func Ptr(s string) *string {
	return &s
}
