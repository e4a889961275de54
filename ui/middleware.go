package ui

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5/middleware"

	"sheetqa/internal/errors"
	"sheetqa/internal/i18n"
	"sheetqa/internal/session"
)

const (
	localizerKey   = "localizer"
	langCookieName = "sheetqa_lang"
	// Multipart framing on top of the file itself
	multipartOverhead = 1 << 20
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() error {
	s.router.Use(s.requestLogger(), s.recovery(), s.localize())

	static, err := s.staticFS()
	if err != nil {
		return err
	}
	s.router.StaticFS("/static", static)
	return nil
}

// requestLogger logs one line per request with chi's request id
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(c.Request.Context(), level, "request",
			"request_id", middleware.GetReqID(c.Request.Context()),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"client_ip", c.ClientIP())
	}
}

// recovery turns a handler panic into a 500 page instead of a dropped
// connection
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error("handler panic", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(errors.InternalError("internal server error")))
	})
}

// localize picks the display language and remembers an explicit ?lang
func (s *Server) localize() gin.HandlerFunc {
	return func(c *gin.Context) {
		explicit := c.Query("lang")
		if explicit != "" {
			loc := i18n.Resolve(explicit, "", s.deps.DefaultLanguage)
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(langCookieName, loc.Code(), 365*24*3600, "/", "", false, true)
			explicit = loc.Code()
		} else if cookie, err := c.Cookie(langCookieName); err == nil {
			explicit = cookie
		}
		c.Set(localizerKey, i18n.Resolve(explicit, c.GetHeader("Accept-Language"), s.deps.DefaultLanguage))
		c.Next()
	}
}

// limitBody caps upload request bodies
func (s *Server) limitBody(c *gin.Context) {
	if s.deps.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.MaxUploadBytes+multipartOverhead)
	}
	c.Next()
}

func localizer(c *gin.Context) *i18n.Localizer {
	if v, ok := c.Get(localizerKey); ok {
		if loc, ok := v.(*i18n.Localizer); ok {
			return loc
		}
	}
	return i18n.New("en")
}

// sessionState loads the caller's session and locks it until the request
// finishes, so one session's operations run one at a time
func (s *Server) sessionState(c *gin.Context) (*session.State, error) {
	state, err := s.deps.Sessions.Get(c.Writer, c.Request)
	if err != nil {
		return nil, err
	}
	state.Lock()
	return state, nil
}
