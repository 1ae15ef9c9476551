package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweetcrust/internal/logging"
	authmw "github.com/Skotchmaster/sweetcrust/internal/middleware/auth"
	"github.com/Skotchmaster/sweetcrust/internal/service"
	"github.com/Skotchmaster/sweetcrust/internal/transport"
)

type MessageHTTP struct {
	Svc *service.MessageService
}

func (h *MessageHTTP) SubmitMessage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "submit_message")

	var req transport.MessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(l, "submit_message_failed", err)
	}

	m, err := h.Svc.Submit(ctx, service.MessageInput{Name: req.Name, Email: req.Email, Message: req.Message})
	if err != nil {
		return fail(l, "submit_message_failed", err)
	}

	l.Info("submit_message_success", "message_id", m.ID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Message sent successfully"})
}

func (h *MessageHTTP) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list_messages")

	msgs, err := h.Svc.List(ctx, authmw.IdentityFrom(c))
	if err != nil {
		return fail(l, "list_messages_failed", err)
	}
	return c.JSON(http.StatusOK, msgs)
}
