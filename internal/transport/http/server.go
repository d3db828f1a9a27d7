package http

import (
	"io/fs"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/msgboard/internal/config"
	"github.com/vovakirdan/msgboard/internal/relay"
)

// NewServer builds the HTTP server for the static pages and the message form.
// files is rooted at the static directory.
func NewServer(cfg config.WebConfig, sender relay.Sender, files fs.FS, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(sender, files, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter registers all routes. Anything unmatched, including other
// methods on known paths, falls through to the not-found page. The gin mode
// is left to the caller.
func NewRouter(sender relay.Sender, files fs.FS, logger *zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.HandleMethodNotAllowed = false
	r.Use(RecoveryMiddleware(logger), LoggerMiddleware(logger))

	static := NewStaticHandlers(files, logger)
	messages := NewMessageHandlers(sender, logger)

	r.GET("/", static.ServeFile("index.html", "text/html"))
	r.GET("/index.html", static.ServeFile("index.html", "text/html"))
	r.GET("/message.html", static.ServeFile("message.html", "text/html"))
	r.GET("/style.css", static.ServeFile("style.css", "text/css"))
	r.GET("/logo.png", static.ServeFile("logo.png", "image/png"))

	r.POST("/message", messages.SubmitMessage)

	r.NoRoute(static.NotFound)

	return r
}
