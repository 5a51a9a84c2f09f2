package storytree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioTree is the four-scene tree: node_1 branches to node_2 (which leads
// to the good ending node_4) and to the bad ending node_3.
func scenarioTree() Tree {
	return Sample("Helping others", "Forest", 4).Tree
}

func problemsOf(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	return verr.Problems
}

func TestValidate_ScenarioTreePasses(t *testing.T) {
	assert.NoError(t, Validate(scenarioTree()))
}

func TestValidate_CountViolationsAreItemizedTogether(t *testing.T) {
	tree := Tree{
		Nodes: []Node{
			{ID: "node_1", Type: NodeStart, Choices: []Choice{
				{ID: "choice_1", NextNodeID: Ptr("node_2")},
				{ID: "choice_1", NextNodeID: Ptr("node_2")},
			}},
			{ID: "node_2", Type: NodeNormal, Choices: []Choice{
				{ID: "choice_2", NextNodeID: Ptr("node_3")},
				{ID: "choice_2", NextNodeID: Ptr("node_3")},
			}},
			{ID: "node_3", Type: NodeGoodEnding},
			{ID: "node_4", Type: NodeBadEnding},
			{ID: "node_5", Type: NodeBadEnding},
		},
		Edges: []Edge{
			{From: "node_1", To: "node_2", ChoiceID: "choice_1"},
			{From: "node_2", To: "node_3", ChoiceID: "choice_2"},
		},
	}

	problems := problemsOf(t, Validate(tree))
	assert.Equal(t, []string{
		"Expected exactly 4 nodes, but got 5",
		"Expected exactly 3 edges, but got 2",
		"Expected exactly 3 choices total, but got 4",
	}, problems)
}

func TestValidate_EdgeChoiceMismatch(t *testing.T) {
	tree := scenarioTree()
	tree.Edges[0].To = "node_3"

	problems := problemsOf(t, Validate(tree))
	require.Len(t, problems, 1)
	assert.Equal(t, "Edge mismatch for choice 'choice_1': choice points to 'node_2' but edge points to 'node_3'", problems[0])
	assert.Contains(t, problems[0], "node_2")
	assert.Contains(t, problems[0], "node_3")
}

func TestValidate_DanglingNextNode(t *testing.T) {
	tree := scenarioTree()
	tree.Nodes[1].Choices[0].NextNodeID = Ptr("node_99")
	tree.Edges[2].To = "node_99"

	problems := problemsOf(t, Validate(tree))
	require.Len(t, problems, 1)
	assert.Equal(t, "Invalid nextNodeId 'node_99' in choice 'choice_3' - node doesn't exist", problems[0])
}

func TestValidate_MissingEdge(t *testing.T) {
	tree := scenarioTree()
	tree.Edges[1].ChoiceID = "choice_9"

	problems := problemsOf(t, Validate(tree))
	assert.Equal(t, []string{"Missing edge for choice 'choice_2' in node 'node_1'"}, problems)
}

func TestValidate_StartNodeCount(t *testing.T) {
	tests := []struct {
		name  string
		types [4]NodeType
		want  string
	}{
		{
			name:  "no start",
			types: [4]NodeType{NodeChoice, NodeNormal, NodeBadEnding, NodeGoodEnding},
			want:  "Expected exactly 1 start node, but got 0",
		},
		{
			name:  "two starts",
			types: [4]NodeType{NodeStart, NodeStart, NodeBadEnding, NodeGoodEnding},
			want:  "Expected exactly 1 start node, but got 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := scenarioTree()
			for i, typ := range tt.types {
				tree.Nodes[i].Type = typ
			}
			assert.Equal(t, []string{tt.want}, problemsOf(t, Validate(tree)))
		})
	}
}

func TestValidate_TerminalChoiceStillNeedsEdge(t *testing.T) {
	tree := scenarioTree()
	tree.Nodes[1].Choices[0].NextNodeID = nil

	problems := problemsOf(t, Validate(tree))
	assert.Equal(t, []string{
		"Edge mismatch for choice 'choice_3': choice points to 'null' but edge points to 'node_4'",
	}, problems)
}

func TestValidate_CollectsEverythingInOnePass(t *testing.T) {
	tree := scenarioTree()
	tree.Nodes = tree.Nodes[:3]
	tree.Edges = tree.Edges[:2]
	tree.Nodes[0].Choices[1].NextNodeID = Ptr("node_7")

	problems := problemsOf(t, Validate(tree))
	assert.Equal(t, []string{
		"Expected exactly 4 nodes, but got 3",
		"Expected exactly 3 edges, but got 2",
		"Edge mismatch for choice 'choice_2': choice points to 'node_7' but edge points to 'node_3'",
		"Missing edge for choice 'choice_3' in node 'node_2'",
		"Invalid nextNodeId 'node_7' in choice 'choice_2' - node doesn't exist",
		"Invalid nextNodeId 'node_4' in choice 'choice_3' - node doesn't exist",
	}, problems)
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	tree := scenarioTree()
	tree.Nodes[3].ID = "node_3"

	problems := problemsOf(t, Validate(tree))
	assert.Equal(t, []string{
		"Invalid nextNodeId 'node_4' in choice 'choice_3' - node doesn't exist",
		"Duplicate node id 'node_3'",
	}, problems)

	tree.Nodes = append(tree.Nodes, tree.Nodes[0])
	problems = problemsOf(t, Validate(tree))
	assert.Equal(t, []string{
		"Expected exactly 4 nodes, but got 5",
		"Expected exactly 3 choices total, but got 5",
		"Expected exactly 1 start node, but got 2",
		"Invalid nextNodeId 'node_4' in choice 'choice_3' - node doesn't exist",
		"Duplicate node id 'node_3'",
		"Duplicate node id 'node_1'",
	}, problems)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Problems: []string{"first", "second"}}

	assert.Equal(t, "Tree validation failed:\n  - first\n  - second", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrInvariant)
}
