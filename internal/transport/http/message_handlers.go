package http

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/msgboard/internal/core"
	"github.com/vovakirdan/msgboard/internal/relay"
)

const (
	maxFormBytes = 1 << 20

	bodySent     = "Message sent successfully!"
	bodyRequired = "Username and message are required"
	bodyTooLarge = "Request body too large"
)

// MessageHandlers accepts message form submissions.
type MessageHandlers struct {
	sender relay.Sender
	log    *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(sender relay.Sender, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{sender: sender, log: logger}
}

// MessageForm is the URL-encoded body of the message form.
type MessageForm struct {
	Username string `form:"username" binding:"required"`
	Message  string `form:"message" binding:"required"`
}

// SubmitMessage forwards a complete form to the ingest server.
// POST /message
func (h *MessageHandlers) SubmitMessage(c *gin.Context) {
	form, err := h.readForm(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			reply(c, http.StatusRequestEntityTooLarge, bodyTooLarge)
			return
		}
		h.log.Debug().Err(err).Msg("invalid message form")
		reply(c, http.StatusBadRequest, bodyRequired)
		return
	}

	msg := core.NewMessage(form.Username, form.Message)
	if err := h.sender.Send(c.Request.Context(), msg); err != nil {
		h.log.Error().Err(err).Str("username", msg.Username).Msg("failed to forward message")
		reply(c, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	h.log.Debug().Str("username", msg.Username).Msg("message forwarded")
	reply(c, http.StatusOK, bodySent)
}

// reply writes a short status message; the form page shows it as HTML.
func reply(c *gin.Context, code int, body string) {
	c.Data(code, "text/html", []byte(body))
}

// readForm decodes the body as URL-encoded regardless of Content-Type. The
// first value of a repeated field wins; malformed pairs are skipped.
func (h *MessageHandlers) readForm(c *gin.Context) (MessageForm, error) {
	var form MessageForm

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBytes))
	if err != nil {
		return form, err
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		h.log.Debug().Err(err).Msg("skipping malformed form pairs")
	}

	if err := binding.MapFormWithTag(&form, values, "form"); err != nil {
		return form, err
	}
	if err := binding.Validator.ValidateStruct(&form); err != nil {
		return form, core.ErrEmptyField
	}
	return form, nil
}
