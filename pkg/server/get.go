package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storybook/pkg/ingest"
	"storybook/pkg/schema"
	"storybook/pkg/storytree"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":    ServiceName,
		"version": Version,
		"health":  "/api/v1/health",
		"apiBase": "/api/v1",
	})
}

// GET /api/v1/health
func (s *Server) handleGetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
		"version": Version,
	})
}

// GET /api/v1/schema/story
func (s *Server) handleGetStorySchema(c echo.Context) error {
	return c.JSON(http.StatusOK, schema.StorySchema)
}

type sampleReq struct {
	Lesson         string `query:"lesson" validate:"max=200"`
	Theme          string `query:"theme" validate:"max=200"`
	StoryFormat    string `query:"storyFormat" validate:"max=100"`
	CharacterCount int    `query:"characterCount" validate:"omitempty,min=1,max=4"`
	View           string `query:"view" validate:"omitempty,oneof=story reading"`
}

// GET /api/v1/stories/sample
func (s *Server) handleGetSample(c echo.Context) error {
	var req sampleReq
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Lesson == "" {
		req.Lesson = "Helping others"
	}
	if req.Theme == "" {
		req.Theme = "Magical Forest"
	}
	if req.CharacterCount == 0 {
		req.CharacterCount = ingest.DefaultCharacterCount
	}

	in := ingest.Request{
		Lesson:         req.Lesson,
		Theme:          req.Theme,
		StoryFormat:    req.StoryFormat,
		CharacterCount: req.CharacterCount,
	}
	res, err := s.Pipeline.RunGenerated(c.Request().Context(), in, storytree.Sample(req.Lesson, req.Theme, req.CharacterCount))
	if err != nil {
		return err
	}

	if req.View == "reading" {
		return c.JSON(http.StatusOK, ok(storytree.ForReading(res.Story)))
	}
	return c.JSON(http.StatusOK, ok(storyData{StoryID: res.Story.ID, Story: res.Story}))
}
