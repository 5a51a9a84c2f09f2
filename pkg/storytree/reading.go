package storytree

import (
	"fmt"
	"strings"
	"unicode"
)

// ReadingNode is a scene as the reading client shows it.
type ReadingNode struct {
	ID             string   `json:"id"`
	SceneNumber    int      `json:"sceneNumber"`
	Title          string   `json:"title"`
	Text           string   `json:"text"`
	Type           NodeType `json:"type"`
	Choices        []Choice `json:"choices"`
	LessonMessage  *string  `json:"lessonMessage"`
	PreviousNodeID *string  `json:"previousNodeId"`
}

type StoryForReading struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Lesson      string        `json:"lesson"`
	Nodes       []ReadingNode `json:"nodes"`
	StartNodeID *string       `json:"startNodeId"`
}

// ForReading projects a canonical story for the reader. Ending scenes carry
// their text as the lesson message, and each scene points back at the scene
// whose choice leads to it.
func ForReading(s Story) StoryForReading {
	previous := make(map[string]string, len(s.Tree.Edges))
	for _, e := range s.Tree.Edges {
		if _, seen := previous[e.To]; !seen {
			previous[e.To] = e.From
		}
	}

	nodes := make([]ReadingNode, 0, len(s.Tree.Nodes))
	for _, n := range s.Tree.Nodes {
		rn := ReadingNode{
			ID:          n.ID,
			SceneNumber: n.SceneNumber,
			Title:       n.Title,
			Text:        n.Text,
			Type:        n.Type,
			Choices:     n.Choices,
		}
		if n.Type.Ending() {
			rn.LessonMessage = Ptr(n.Text)
		}
		if prev, ok := previous[n.ID]; ok {
			rn.PreviousNodeID = Ptr(prev)
		}
		nodes = append(nodes, rn)
	}

	out := StoryForReading{
		ID:     s.ID,
		Title:  readingTitle(s.Lesson),
		Lesson: s.Lesson,
		Nodes:  nodes,
	}
	if start, ok := s.Tree.StartNode(); ok {
		out.StartNodeID = Ptr(start.ID)
	}
	return out
}

func readingTitle(lesson string) string {
	words := strings.Fields(lesson)
	if len(words) == 0 {
		return "Story"
	}
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return fmt.Sprintf("%s Story", strings.Join(words, " "))
}
