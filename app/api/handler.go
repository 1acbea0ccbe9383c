package api

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"audiobook/loader"
	"audiobook/rag"
	"audiobook/splitter"
	"audiobook/types"
)

type RequestHandler struct {
	service *rag.Service
}

func NewRequestHandler(service *rag.Service) *RequestHandler {
	return &RequestHandler{
		service: service,
	}
}

// HandleIndex indexes a document from raw text in the request body.
func (h *RequestHandler) HandleIndex(c *fiber.Ctx) error {
	var params types.IndexParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return types.NewValidationError(errors)
	}

	count, err := h.service.IndexDocument(
		c.UserContext(),
		params.Name,
		params.Text,
		splitter.Method(params.Method),
		splitter.Options{ChunkSize: params.ChunkSize, Overlap: params.Overlap},
	)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"document":      params.Name,
		"units_indexed": count,
	})
}

// HandleUpload indexes a document from an uploaded text file. Anything
// that needs real extraction (PDF, images, DOCX) belongs to the external
// extraction service, not here.
func (h *RequestHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	text, err := loader.ExtractText(fileHeader.Filename, data)
	if err != nil {
		return err
	}

	documentID := loader.DocumentID(fileHeader.Filename)
	count, err := h.service.IndexDocument(c.UserContext(), documentID, text, "", splitter.Options{})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"document":      documentID,
		"units_indexed": count,
	})
}

// HandleAsk answers a question against the active document.
func (h *RequestHandler) HandleAsk(c *fiber.Ctx) error {
	var params types.AskParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return types.NewValidationError(errors)
	}

	result, err := h.service.Answer(c.UserContext(), params.SessionID, params.Question, params.TopK)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleHistory returns the conversation log for a session.
func (h *RequestHandler) HandleHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return NewError(fiber.StatusBadRequest, "session_id query parameter is required")
	}
	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"turns":      h.service.History(sessionID),
	})
}

// HandleClearHistory wipes the conversation log for a session.
func (h *RequestHandler) HandleClearHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return NewError(fiber.StatusBadRequest, "session_id query parameter is required")
	}
	h.service.ClearHistory(sessionID)
	return c.JSON(fiber.Map{"result": "ok"})
}
