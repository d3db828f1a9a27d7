package http

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	errorPage       = "error.html"
	genericNotFound = "404 page not found"
)

// StaticHandlers serves files from the static directory.
type StaticHandlers struct {
	files fs.FS
	log   *zerolog.Logger
}

// NewStaticHandlers creates handlers reading from files on every request.
func NewStaticHandlers(files fs.FS, logger *zerolog.Logger) *StaticHandlers {
	return &StaticHandlers{files: files, log: logger}
}

// ServeFile returns a handler answering with the named file as contentType,
// or the not-found page if the file cannot be read.
func (h *StaticHandlers) ServeFile(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := fs.ReadFile(h.files, name)
		if err != nil {
			h.log.Debug().Err(err).Str("file", name).Msg("static file unavailable")
			h.NotFound(c)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// NotFound answers 404 with error.html when present, otherwise a generic body.
func (h *StaticHandlers) NotFound(c *gin.Context) {
	data, err := fs.ReadFile(h.files, errorPage)
	if err != nil {
		c.String(http.StatusNotFound, genericNotFound)
		return
	}
	c.Data(http.StatusNotFound, "text/html", data)
}
