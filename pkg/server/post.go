package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"storybook/pkg/ingest"
	"storybook/pkg/storytree"
)

type ingestReq struct {
	Lesson         string          `json:"lesson" validate:"required,max=200"`
	Theme          string          `json:"theme" validate:"required,max=200"`
	StoryFormat    string          `json:"storyFormat" validate:"max=100"`
	CharacterCount int             `json:"characterCount" validate:"omitempty,min=1,max=4"`
	Payload        json.RawMessage `json:"payload" validate:"required"`
}

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

type storyData struct {
	StoryID string          `json:"storyId"`
	Story   storytree.Story `json:"story"`
}

// payloadText accepts the generator output either as a JSON string holding
// the raw model text or as the JSON object itself.
func payloadText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", &storytree.PayloadError{Field: "payload", Err: err}
		}
		return s, nil
	}
	return string(raw), nil
}

// bindError surfaces decoding errors raised by storytree types instead of
// echo's generic bind message.
func bindError(err error) error {
	var perr *storytree.PayloadError
	if errors.As(err, &perr) {
		return perr
	}
	return err
}

// POST /api/v1/stories/ingest
func (s *Server) handlePostIngest(c echo.Context) error {
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	text, err := payloadText(req.Payload)
	if err != nil {
		return err
	}

	in := ingest.Request{
		Lesson:         req.Lesson,
		Theme:          req.Theme,
		StoryFormat:    req.StoryFormat,
		CharacterCount: req.CharacterCount,
		Payload:        text,
	}
	var res ingest.Result
	if key := c.Request().Header.Get(HeaderIdempotencyKey); key != "" {
		// Shared work outlives whichever request happened to start it.
		var replayed bool
		res, replayed, err = s.ingests.Do(replayKey(key, in), func() (ingest.Result, error) {
			return s.Pipeline.Run(s.Ctx, in)
		})
		if replayed {
			c.Response().Header().Set(HeaderReplayed, "true")
		}
	} else {
		res, err = s.Pipeline.Run(c.Request().Context(), in)
	}
	if err != nil {
		return err
	}

	if res.Tokens > 0 {
		log.Debug("ingested payload size", "story", res.Story.ID, "tokens", res.Tokens)
	}
	return c.JSON(http.StatusCreated, ok(storyData{StoryID: res.Story.ID, Story: res.Story}))
}

// replayKey binds an idempotency key to the request it was first sent with,
// so reusing a key for a different story mints a new one.
func replayKey(key string, in ingest.Request) string {
	h := sha256.New()
	for _, part := range []string{key, in.Lesson, in.Theme, in.StoryFormat, strconv.Itoa(in.CharacterCount), in.Payload} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type validateReq struct {
	Tree *storytree.Tree `json:"tree" validate:"required"`
}

type validateData struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems"`
}

// POST /api/v1/stories/validate
func (s *Server) handlePostValidate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out := validateData{Valid: true, Problems: []string{}}
	if err := storytree.Validate(*req.Tree); err != nil {
		var verr *storytree.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		out = validateData{Valid: false, Problems: verr.Problems}
	}
	return c.JSON(http.StatusOK, ok(out))
}
