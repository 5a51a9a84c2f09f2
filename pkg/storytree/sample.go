package storytree

import (
	"fmt"
	"strings"
)

const maxSampleCharacters = 4

// Sample builds the fallback story used when no generator is wired up. It has
// the exact shape Validate expects and still carries placeholder ids.
func Sample(lesson, theme string, characterCount int) Generated {
	const forest = "Magical Forest"

	tree := Tree{
		Nodes: []Node{
			{
				ID:          "node_1",
				SceneNumber: 1,
				Title:       "The Beginning",
				Text: fmt.Sprintf("Once upon a time in a %s, there was a brave little character who learned that %s.",
					strings.ToLower(theme), strings.ToLower(lesson)),
				Location: forest,
				Type:     NodeStart,
				Choices: []Choice{
					{ID: "choice_1", Text: "Help a friend in need", NextNodeID: Ptr("node_2"), IsCorrect: true},
					{ID: "choice_2", Text: "Ignore the friend", NextNodeID: Ptr("node_3"), IsCorrect: false},
				},
			},
			{
				ID:          "node_2",
				SceneNumber: 2,
				Title:       "A Good Choice",
				Text:        "The character helped their friend and felt proud of their decision.",
				Location:    forest,
				Type:        NodeNormal,
				Choices: []Choice{
					{ID: "choice_3", Text: "Continue the adventure", NextNodeID: Ptr("node_4"), IsCorrect: true},
				},
			},
			{
				ID:          "node_3",
				SceneNumber: 3,
				Title:       "A Missed Opportunity",
				Text:        "The character ignored their friend and later felt sad about their choice.",
				Location:    forest,
				Type:        NodeBadEnding,
				Choices:     []Choice{},
			},
			{
				ID:          "node_4",
				SceneNumber: 4,
				Title:       "The Happy Ending",
				Text:        "The character learned the importance of helping others and lived happily ever after.",
				Location:    forest,
				Type:        NodeGoodEnding,
				Choices:     []Choice{},
			},
		},
		Edges: []Edge{
			{From: "node_1", To: "node_2", ChoiceID: "choice_1"},
			{From: "node_1", To: "node_3", ChoiceID: "choice_2"},
			{From: "node_2", To: "node_4", ChoiceID: "choice_3"},
		},
	}

	characters := []CharacterRole{
		{ID: "char_1", Role: "Protagonist", Description: "Main character"},
		{ID: "char_2", Role: "Friend", Description: "Supporting character"},
		{ID: "char_3", Role: "Helper", Description: "Wise guide"},
		{ID: "char_4", Role: "Antagonist", Description: "Challenge character"},
	}
	characterCount = min(max(characterCount, 0), maxSampleCharacters)

	return Generated{
		Tree:       tree,
		Characters: characters[:characterCount],
		Locations: []Location{
			{ID: "loc_1", Name: forest, SceneNumbers: []int{1, 2, 3, 4}, Description: "A beautiful forest where the story takes place"},
		},
	}
}
