package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook/pkg/storytree"
)

func counter() storytree.IDFunc {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
}

func samplePayload(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(storytree.Sample("Sharing", "Ocean", 4))
	require.NoError(t, err)
	return string(raw)
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.FixedZone("CET", 3600))
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{NewID: counter(), Now: fixedNow}

	res, err := p.Run(context.Background(), Request{
		Lesson:      "Sharing",
		Theme:       "Ocean",
		StoryFormat: "interactive",
		Payload:     "```json\n" + samplePayload(t) + "\n```",
	})
	require.NoError(t, err)

	s := res.Story
	assert.Equal(t, "id-13", s.ID, "story id is minted after every entity id")
	assert.Equal(t, storytree.StatusDraft, s.Status)
	assert.Equal(t, "Sharing", s.Lesson)
	assert.Equal(t, "interactive", s.StoryFormat)
	assert.Equal(t, fixedNow().UTC(), s.CreatedAt)
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)
	assert.Equal(t, "id-01", s.Tree.Nodes[0].ID)
	assert.Equal(t, "id-01", s.Tree.Edges[0].From)
	assert.Equal(t, "id-02", s.Tree.Edges[0].To)
	assert.Equal(t, "id-12", s.Locations[0].ID)
	assert.Equal(t, "id-12", res.Mapping.Locations["loc_1"])
	assert.Zero(t, res.Tokens)
}

func TestPipeline_RunCountsTokens(t *testing.T) {
	p := &Pipeline{
		NewID:       counter(),
		CountTokens: func(s string) (int, error) { return len(strings.Fields(s)), nil },
	}

	res, err := p.Run(context.Background(), Request{Payload: "<think>ok</think> " + samplePayload(t)})
	require.NoError(t, err)
	assert.Positive(t, res.Tokens)
}

func TestPipeline_RunValidationFailure(t *testing.T) {
	g := storytree.Sample("Sharing", "Ocean", 4)
	g.Tree.Nodes[1].Choices[0].NextNodeID = storytree.Ptr("node_99")
	g.Tree.Edges[2].To = "node_99"
	raw, err := json.Marshal(g)
	require.NoError(t, err)

	_, err = New(counter()).Run(context.Background(), Request{Payload: string(raw)})
	require.Error(t, err)
	assert.ErrorIs(t, err, storytree.ErrValidation)

	var verr *storytree.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Invalid nextNodeId 'node_99' in choice 'choice_3' - node doesn't exist"}, verr.Problems)
}

func TestPipeline_RunPayloadErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"no json", "Sorry, I can't write that story.", ""},
		{"malformed", `{"tree": {"nodes": [}`, ""},
		{"unknown field", `{"tree":{"nodes":[],"edges":[]},"characters":[],"locations":[],"moral":"x"}`, ""},
		{"unknown node type", `{"tree":{"nodes":[{"id":"node_1","type":"epilogue"}],"edges":[]}}`, "type"},
		{"missing nodes", `{"tree":{"edges":[]}}`, "tree.nodes"},
		{"unknown choice field", `{"tree":{"nodes":[{"id":"node_1","type":"start","choices":[{"id":"c","text":"go","extra":1}]}],"edges":[]}}`, "choice"},
		{"unknown edge field", `{"tree":{"nodes":[],"edges":[{"from":"a","to":"b","choiceId":"c","weight":1}]}}`, "edge"},
		{"duplicate character", `{"tree":{"nodes":[],"edges":[]},"characters":[{"id":"char_1"},{"id":"char_1"}]}`, "characters[1].id"},
		{"duplicate location", `{"tree":{"nodes":[],"edges":[]},"locations":[{"id":"loc_1"},{"id":"loc_1"}]}`, "locations[1].id"},
		{"missing choice id", `{"tree":{"nodes":[{"id":"node_1","type":"start","choices":[{"text":"go"}]}],"edges":[]}}`, "tree.nodes[0].choices[0].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil).Run(context.Background(), Request{Payload: tt.payload})
			require.Error(t, err)
			assert.ErrorIs(t, err, storytree.ErrPayload)

			var perr *storytree.PayloadError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.field, perr.Field)
		})
	}
}

func TestPipeline_CharacterCount(t *testing.T) {
	p := New(counter())
	g := storytree.Sample("Sharing", "Ocean", 4)

	for _, n := range []int{-1, 5} {
		_, err := p.RunGenerated(context.Background(), Request{CharacterCount: n}, g)
		assert.ErrorIs(t, err, storytree.ErrPayload, "count %d", n)
	}

	_, err := p.RunGenerated(context.Background(), Request{CharacterCount: 2}, g)
	assert.NoError(t, err)
}

func TestPipeline_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Run(ctx, Request{Payload: samplePayload(t)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_ZeroValueMintsUUIDs(t *testing.T) {
	var p Pipeline
	res, err := p.Run(context.Background(), Request{Payload: samplePayload(t)})
	require.NoError(t, err)

	assert.Len(t, res.Story.ID, 36)
	assert.NotEqual(t, "node_1", res.Story.Tree.Nodes[0].ID)
}

func TestDecode_FromAlias(t *testing.T) {
	payload := strings.ReplaceAll(samplePayload(t), `"from":`, `"from_":`)

	g, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "node_1", g.Tree.Edges[0].From)
	assert.NoError(t, storytree.Validate(g.Tree))
}
