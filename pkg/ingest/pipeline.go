package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"storybook/pkg/storytree"
	"storybook/pkg/utils"
)

const (
	DefaultCharacterCount = 4
	MaxCharacterCount     = 4
)

// Request carries the authoring choices a story was generated for, plus the
// generator's raw answer.
type Request struct {
	Lesson         string
	Theme          string
	StoryFormat    string
	CharacterCount int
	Payload        string
}

type Result struct {
	Story   storytree.Story
	Mapping storytree.Mapping
	// Tokens is the size of the raw payload, zero when no counter is set.
	Tokens int
}

// Pipeline turns generator output into a canonical draft story. The zero
// value is usable and mints UUIDs.
type Pipeline struct {
	NewID       storytree.IDFunc
	Now         func() time.Time
	CountTokens func(string) (int, error)
}

func New(newID storytree.IDFunc) *Pipeline {
	return &Pipeline{NewID: newID}
}

// Run decodes req.Payload and hands it to RunGenerated.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	g, err := Decode(req.Payload)
	if err != nil {
		log.Warn("generator payload rejected", "error", err, "payload", utils.LimitStr(req.Payload, 120))
		return Result{}, err
	}

	res, err := p.RunGenerated(ctx, req, g)
	if err != nil {
		return Result{}, err
	}

	if p.CountTokens != nil {
		n, err := p.CountTokens(req.Payload)
		if err != nil {
			log.Debug("could not count payload tokens", "error", err)
		}
		res.Tokens = n
	}
	return res, nil
}

// RunGenerated validates and canonicalizes an already decoded payload and
// wraps it in a draft Story with a fresh id.
func (p *Pipeline) RunGenerated(ctx context.Context, req Request, g storytree.Generated) (Result, error) {
	count, err := characterCount(req.CharacterCount)
	if err != nil {
		return Result{}, err
	}
	if len(g.Characters) > count {
		log.Debug("generator returned extra characters", "want", count, "got", len(g.Characters))
	}

	if err := storytree.Validate(g.Tree); err != nil {
		log.Warn("story tree failed validation", "error", err)
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	ts := now().UTC()

	draft := storytree.Story{
		Lesson:      req.Lesson,
		Theme:       req.Theme,
		StoryFormat: req.StoryFormat,
		Status:      storytree.StatusDraft,
		Tree:        g.Tree,
		Characters:  g.Characters,
		Locations:   g.Locations,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	story, mapping, err := storytree.Canonicalize(draft, p.NewID)
	if err != nil {
		log.Error("canonicalization failed on a validated tree", "error", err)
		return Result{}, fmt.Errorf("canonicalize story: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	story.ID = p.newID()

	log.Info("story ingested", "story", story.ID, "nodes", len(story.Tree.Nodes), "characters", len(story.Characters))
	return Result{Story: story, Mapping: mapping}, nil
}

func (p *Pipeline) newID() string {
	if p.NewID == nil {
		return storytree.DefaultID()
	}
	return p.NewID()
}

func characterCount(n int) (int, error) {
	if n == 0 {
		return DefaultCharacterCount, nil
	}
	if n < 1 || n > MaxCharacterCount {
		return 0, &storytree.PayloadError{
			Field: "characterCount",
			Msg:   fmt.Sprintf("must be between 1 and %d, got %d", MaxCharacterCount, n),
		}
	}
	return n, nil
}
