package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/dyike/StockInsights/config"
	"github.com/dyike/StockInsights/consts"
	"github.com/dyike/StockInsights/models"
)

// Health handles GET /health
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ask handles POST /ask. The answer is streamed as server-sent events
// unless the caller asks for JSON with ?stream=false or an Accept header
// that excludes text/event-stream.
func (s *Server) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if !wantsStream(c) {
		s.answerJSON(c, req.Question)
		return
	}
	s.answerStream(c, req.Question)
}

func (s *Server) answerJSON(c *gin.Context, question string) {
	ctx := c.Request.Context()

	answer, err := s.assistant.Answer(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logFailure(c, err)
		answer = userMessage(err)
	}
	c.JSON(http.StatusOK, models.AskResponse{Answer: answer})
}

func (s *Server) answerStream(c *gin.Context, question string) {
	ctx := c.Request.Context()

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for fragment, err := range s.assistant.Stream(ctx, question) {
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logFailure(c, err)
			fragment = userMessage(err)
		}
		if werr := writeEvent(c.Writer, fragment); werr != nil {
			log.Debug().Err(werr).Str("request_id", c.GetString(requestIDKey)).Msg("client went away")
			return
		}
		c.Writer.Flush()
		if err != nil {
			return
		}
	}
}

func (s *Server) logFailure(c *gin.Context, err error) {
	log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("answering question failed")
}

func wantsStream(c *gin.Context) bool {
	if v, ok := c.GetQuery("stream"); ok {
		return v != "false" && v != "0"
	}
	accept := c.GetHeader("Accept")
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/event-stream") {
		return false
	}
	return true
}

// userMessage hides internal failures behind a fixed apology; only
// configuration errors are shown as they are.
func userMessage(err error) string {
	var missing *config.MissingEnvError
	if errors.As(err, &missing) {
		return missing.Error()
	}
	return consts.MsgServerError
}
