package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLogger logs every request with its status and latency.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	sanitize := strings.NewReplacer("\n", "", "\r", "").Replace

	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		logger.Info("request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", sanitize(ctx.Request.URL.Path)),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

const sessionKey = "session"

// sessionLoader attaches the visitor's session to the request. A first visit
// starts a session, sets its cookie and waits for the page to be initialised.
func sessionLoader(sessions *Sessions) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, _ := ctx.Cookie(sessionCookie)
		sess, created := sessions.get(id)
		if created {
			ctx.SetSameSite(http.SameSiteLaxMode)
			ctx.SetCookie(sessionCookie, sess.id, 0, "/", "", ctx.Request.TLS != nil, true)
			<-sess.controller.Init(ctx.Request.Context())
		}

		ctx.Set(sessionKey, sess)
		ctx.Next()
	}
}

func currentSession(ctx *gin.Context) *session {
	return ctx.MustGet(sessionKey).(*session)
}
