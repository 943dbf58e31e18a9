package web

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var templateFuncs = template.FuncMap{
	"url":      URL,
	"bytes":    func(n any) string { return humanBytes(toInt64(n)) },
	"kb":       func(kb uint64) string { return humanBytes(int64(kb) * 1024) },
	"pct":      func(v float64) string { return fmt.Sprintf("%.0f%%", v) },
	"uptime":   humanDuration,
	"datetime": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
}

// navItem is an entry of the top menu.
type navItem struct {
	Route string
	Label string
}

var nav = []navItem{
	{RouteHome, "Home"},
	{RouteSystems, "ROMs"},
	{RouteBios, "BIOS"},
	{RouteConfig, "Recalbox"},
	{RouteConfigES, "EmulationStation"},
	{RouteConfigAS, "Audio"},
	{RouteMonitoring, "Monitoring"},
	{RouteLogs, "Logs"},
}

// render executes the layout with the given page body.
func (s *Server) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["page"] = page
	data["site"] = s.cfg.Site
	data["nav"] = nav
	c.HTML(status, "layout.html", data)
}

func (s *Server) renderError(c *gin.Context, status int, message string) {
	s.render(c, status, "error", gin.H{
		"status":  status,
		"title":   http.StatusText(status),
		"message": message,
	})
}

// fail logs err and answers with a generic server error.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	s.renderError(c, http.StatusInternalServerError, "Something went wrong, see the server log")
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 4; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func toInt64(n any) int64 {
	switch v := n.(type) {
	case int64:
		return v
	case uint64:
		return int64(v)
	case int:
		return int64(v)
	}
	return 0
}

func humanDuration(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	mins := d / time.Minute
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
