package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	aischedule "github.com/Avaneesh16/Travel-Genie/plugin/ai/schedule"
	"github.com/Avaneesh16/Travel-Genie/server/ai"
	apperrors "github.com/Avaneesh16/Travel-Genie/server/internal/errors"
)

// ChatRequest is the body of POST /api/v1/chat and POST /api/v1/parse.
type ChatRequest struct {
	Message string `json:"message"`
}

// HistoryResponse is the body of GET /api/v1/chat/history.
type HistoryResponse struct {
	SessionID string       `json:"session_id"`
	Messages  []ai.Message `json:"messages"`
}

// Chat handles one message. Failures of the handled intent are described in
// the reply with status 200; only malformed requests fail the call.
// POST /api/v1/chat
func (s *APIV1Service) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperrors.InvalidArgument("invalid request body"))
	}

	ctx := c.Request().Context()
	if err := s.chatSemaphore.Acquire(ctx, 1); err != nil {
		return writeError(c, apperrors.Timeout("server is busy, try again"))
	}
	defer s.chatSemaphore.Release(1)

	reply, err := s.Assistant.Handle(ctx, SessionID(c), req.Message)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

// GetHistory returns the remembered conversation of the session.
// GET /api/v1/chat/history
func (s *APIV1Service) GetHistory(c echo.Context) error {
	id := SessionID(c)
	messages := s.Assistant.History(c.Request().Context(), id)
	if messages == nil {
		messages = []ai.Message{}
	}
	return c.JSON(http.StatusOK, HistoryResponse{SessionID: id, Messages: messages})
}

// ClearHistory forgets the conversation of the session.
// DELETE /api/v1/chat/history
func (s *APIV1Service) ClearHistory(c echo.Context) error {
	s.Assistant.ClearHistory(c.Request().Context(), SessionID(c))
	return c.NoContent(http.StatusNoContent)
}

// Parse classifies a message without touching the calendar.
// POST /api/v1/parse
func (s *APIV1Service) Parse(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return writeError(c, apperrors.InvalidArgument("message is required"))
	}
	return c.JSON(http.StatusOK, aischedule.Tag(s.Assistant.Classify(req.Message)))
}
