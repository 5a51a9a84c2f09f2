package storytree

import "fmt"

// The generation prompt pins the tree to this shape. Counts are compared for
// equality so that any drift from the generator surfaces here.
const (
	ExpectedNodes      = 4
	ExpectedEdges      = 3
	ExpectedChoices    = 3
	ExpectedStartNodes = 1
)

type choiceRef struct {
	nodeID   string
	choiceID string
	next     *string
}

type edgeKey struct {
	from     string
	choiceID string
}

// Validate checks a freshly generated tree against the fixed shape contract,
// the choice/edge agreement and node id uniqueness. It reports every problem
// it finds, not just the first, as a *ValidationError. A nil return means the
// tree may be canonicalized.
func Validate(tree Tree) error {
	var problems []string

	if n := len(tree.Nodes); n != ExpectedNodes {
		problems = append(problems, fmt.Sprintf("Expected exactly %d nodes, but got %d", ExpectedNodes, n))
	}
	if n := len(tree.Edges); n != ExpectedEdges {
		problems = append(problems, fmt.Sprintf("Expected exactly %d edges, but got %d", ExpectedEdges, n))
	}

	nodeIDs := make(map[string]struct{}, len(tree.Nodes))
	var duplicates []string
	var choices []choiceRef
	var starts int
	for _, node := range tree.Nodes {
		if _, dup := nodeIDs[node.ID]; dup {
			duplicates = append(duplicates, node.ID)
		}
		nodeIDs[node.ID] = struct{}{}
		if node.Type == NodeStart {
			starts++
		}
		for _, c := range node.Choices {
			choices = append(choices, choiceRef{nodeID: node.ID, choiceID: c.ID, next: c.NextNodeID})
		}
	}

	if n := len(choices); n != ExpectedChoices {
		problems = append(problems, fmt.Sprintf("Expected exactly %d choices total, but got %d", ExpectedChoices, n))
	}
	if starts != ExpectedStartNodes {
		problems = append(problems, fmt.Sprintf("Expected exactly %d start node, but got %d", ExpectedStartNodes, starts))
	}

	edges := make(map[edgeKey]string, len(tree.Edges))
	for _, e := range tree.Edges {
		edges[edgeKey{from: e.From, choiceID: e.ChoiceID}] = e.To
	}

	for _, c := range choices {
		to, ok := edges[edgeKey{from: c.nodeID, choiceID: c.choiceID}]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("Missing edge for choice '%s' in node '%s'", c.choiceID, c.nodeID))
		case c.next == nil || *c.next != to:
			problems = append(problems, fmt.Sprintf("Edge mismatch for choice '%s': choice points to '%s' but edge points to '%s'",
				c.choiceID, deref(c.next), to))
		}
	}

	for _, c := range choices {
		if c.next == nil || *c.next == "" {
			continue
		}
		if _, ok := nodeIDs[*c.next]; !ok {
			problems = append(problems, fmt.Sprintf("Invalid nextNodeId '%s' in choice '%s' - node doesn't exist", *c.next, c.choiceID))
		}
	}

	for _, id := range duplicates {
		problems = append(problems, fmt.Sprintf("Duplicate node id '%s'", id))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
