package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"storybook/pkg/storytree"
	"storybook/pkg/utils"
)

// Decode extracts the JSON object from raw generator output and decodes it
// into a Generated. Unknown fields are rejected at every level, and every
// entity must carry an id. Character and location ids must be unique.
func Decode(raw string) (storytree.Generated, error) {
	body := utils.ExtractJSON(raw)
	if body == "" {
		return storytree.Generated{}, &storytree.PayloadError{Msg: "no JSON object in generator output"}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()

	var g storytree.Generated
	if err := dec.Decode(&g); err != nil {
		var perr *storytree.PayloadError
		if errors.As(err, &perr) {
			return storytree.Generated{}, perr
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return storytree.Generated{}, &storytree.PayloadError{Msg: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset), Err: err}
		}
		return storytree.Generated{}, &storytree.PayloadError{Err: err}
	}

	if err := checkRequired(g); err != nil {
		return storytree.Generated{}, err
	}
	return g, nil
}

func checkRequired(g storytree.Generated) error {
	if g.Tree.Nodes == nil {
		return &storytree.PayloadError{Field: "tree.nodes", Msg: "required field is missing"}
	}
	if g.Tree.Edges == nil {
		return &storytree.PayloadError{Field: "tree.edges", Msg: "required field is missing"}
	}
	for i, n := range g.Tree.Nodes {
		if n.ID == "" {
			return &storytree.PayloadError{Field: fmt.Sprintf("tree.nodes[%d].id", i), Msg: "required field is missing"}
		}
		if n.Type == "" {
			return &storytree.PayloadError{Field: fmt.Sprintf("tree.nodes[%d].type", i), Msg: "required field is missing"}
		}
		for j, c := range n.Choices {
			if c.ID == "" {
				return &storytree.PayloadError{Field: fmt.Sprintf("tree.nodes[%d].choices[%d].id", i, j), Msg: "required field is missing"}
			}
		}
	}
	seen := make(map[string]struct{}, len(g.Characters))
	for i, c := range g.Characters {
		if c.ID == "" {
			return &storytree.PayloadError{Field: fmt.Sprintf("characters[%d].id", i), Msg: "required field is missing"}
		}
		if _, dup := seen[c.ID]; dup {
			return &storytree.PayloadError{Field: fmt.Sprintf("characters[%d].id", i), Msg: fmt.Sprintf("duplicate id %q", c.ID)}
		}
		seen[c.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(g.Locations))
	for i, l := range g.Locations {
		if l.ID == "" {
			return &storytree.PayloadError{Field: fmt.Sprintf("locations[%d].id", i), Msg: "required field is missing"}
		}
		if _, dup := seen[l.ID]; dup {
			return &storytree.PayloadError{Field: fmt.Sprintf("locations[%d].id", i), Msg: fmt.Sprintf("duplicate id %q", l.ID)}
		}
		seen[l.ID] = struct{}{}
	}
	return nil
}
