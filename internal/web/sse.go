package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/retromgr/internal/logtail"
)

// logLine is the payload of a "line" event.
type logLine struct {
	Line string `json:"line"`
}

// handleLogsStream pushes lines appended to the log file as server-sent
// events until the client goes away.
func (s *Server) handleLogsStream() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"path": s.cfg.LogFilePath})
		c.Writer.Flush()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		lines := make(chan string, 256)
		followErr := make(chan error, 1)
		go func() {
			followErr <- logtail.Follow(ctx, s.cfg.LogFilePath, func(l string) {
				select {
				case lines <- l:
				case <-ctx.Done():
				}
			})
		}()

		heartbeat := time.NewTicker(15 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-followErr:
				if err != nil {
					s.log.Warn().Err(err).Str("path", s.cfg.LogFilePath).Msg("follow log")
					writeSSE(c.Writer, "error", map[string]string{"error": "log file cannot be followed"})
					c.Writer.Flush()
				}
				return
			case l := <-lines:
				writeSSE(c.Writer, "line", logLine{Line: l})
				c.Writer.Flush()
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
