package web

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/retromgr/internal/bios"
	"github.com/zulandar/retromgr/internal/db"
	"github.com/zulandar/retromgr/internal/logtail"
	"github.com/zulandar/retromgr/internal/monitor"
	"github.com/zulandar/retromgr/internal/roms"
)

const (
	defaultLogLines = 100
	maxLogLines     = 5000
	recentUploads   = 10
)

func (s *Server) handleHome() gin.HandlerFunc {
	return func(c *gin.Context) {
		systems, err := s.roms.Systems()
		if err != nil {
			s.fail(c, err)
			return
		}
		romCount := 0
		for _, sys := range systems {
			romCount += sys.RomCount
		}
		entries, err := s.bios.Scan()
		if err != nil {
			s.fail(c, err)
			return
		}
		latest, err := db.LatestSample(s.db.WithContext(c.Request.Context()))
		if err != nil {
			s.fail(c, err)
			return
		}
		uploads, err := db.RecentUploads(s.db.WithContext(c.Request.Context()), recentUploads)
		if err != nil {
			s.fail(c, err)
			return
		}
		data := gin.H{
			"publicURL":   s.cfg.Site.PublicURL(),
			"systemCount": len(systems),
			"romCount":    romCount,
			"biosCounts":  statusCounts(entries),
			"uploads":     uploads,
		}
		if latest != nil {
			data["sample"] = monitor.FromModel(*latest)
		}
		s.render(c, http.StatusOK, "home", data)
	}
}

func (s *Server) handleBios() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := s.bios.Scan()
		if err != nil {
			s.fail(c, err)
			return
		}
		s.render(c, http.StatusOK, "bios", gin.H{
			"dir":     s.bios.Dir(),
			"entries": entries,
			"counts":  statusCounts(entries),
		})
	}
}

// statusCounts keys the BIOS counts by plain string for templates.
func statusCounts(entries []bios.Entry) map[string]int {
	out := make(map[string]int)
	for st, n := range bios.Counts(entries) {
		out[string(st)] = n
	}
	return out
}

// monitoringData is the JSON shape of the current sample.
type monitoringData struct {
	monitor.Sample
	MemUsedPercent  float64 `json:"mem_used_percent"`
	DiskUsedPercent float64 `json:"disk_used_percent"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

func (s *Server) handleMonitoring() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sample, err := s.sampler.Sample(ctx)
		if err != nil {
			s.fail(c, err)
			return
		}
		since := sample.TakenAt.Add(-s.cfg.Monitoring.Retention)
		rows, err := db.SamplesSince(s.db.WithContext(ctx), since)
		if err != nil {
			s.fail(c, err)
			return
		}
		history := make([]monitor.Sample, len(rows))
		for i, r := range rows {
			history[i] = monitor.FromModel(r)
		}
		s.render(c, http.StatusOK, "monitoring", gin.H{
			"sample":    sample,
			"history":   history,
			"alertC":    s.cfg.Monitoring.TempAlertC,
			"hot":       s.cfg.Monitoring.TempAlertC > 0 && sample.CPUTempC >= s.cfg.Monitoring.TempAlertC,
			"retention": s.cfg.Monitoring.Retention,
		})
	}
}

func (s *Server) handleMonitoringData() gin.HandlerFunc {
	return func(c *gin.Context) {
		sample, err := s.sampler.Sample(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sampling failed"})
			return
		}
		c.JSON(http.StatusOK, monitoringData{
			Sample:          sample,
			MemUsedPercent:  sample.MemUsedPercent(),
			DiskUsedPercent: sample.DiskUsedPercent(),
			UptimeSeconds:   sample.Uptime.Seconds(),
		})
	}
}

// logLines reads the lines query parameter, clamped to a sane range.
func logLines(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLogLines
	}
	return min(n, maxLogLines)
}

func (s *Server) handleLogs() gin.HandlerFunc {
	return func(c *gin.Context) {
		n := logLines(c.Query("lines"))
		lines, err := logtail.Tail(s.cfg.LogFilePath, n)
		missing := errors.Is(err, os.ErrNotExist)
		if err != nil && !missing {
			s.fail(c, err)
			return
		}
		s.render(c, http.StatusOK, "logs", gin.H{
			"path":    s.cfg.LogFilePath,
			"lines":   lines,
			"count":   n,
			"missing": missing,
		})
	}
}

func (s *Server) handleSystems() gin.HandlerFunc {
	return func(c *gin.Context) {
		systems, err := s.roms.Systems()
		if err != nil {
			s.fail(c, err)
			return
		}
		s.render(c, http.StatusOK, "systems", gin.H{
			"root":    s.roms.Root(),
			"systems": systems,
		})
	}
}

func (s *Server) handleRomsList() gin.HandlerFunc {
	return func(c *gin.Context) {
		short := c.Param("system")
		sys, err := s.roms.System(short)
		if errors.Is(err, roms.ErrUnknownSystem) {
			s.renderError(c, http.StatusNotFound, "Unknown system "+short)
			return
		}
		if err != nil {
			s.fail(c, err)
			return
		}

		status := http.StatusOK
		var deleteErr string
		if c.Request.Method == http.MethodPost {
			names := c.PostFormArray("delete")
			if len(names) == 0 {
				status, deleteErr = http.StatusBadRequest, "Select at least one ROM to delete"
			} else if err := s.roms.Delete(short, names...); err != nil {
				status, deleteErr = http.StatusBadRequest, err.Error()
			} else {
				s.log.Info().Str("system", short).Strs("roms", names).Msg("roms deleted")
				c.Redirect(http.StatusSeeOther, mustURL(RouteRomsList, short)+"?deleted="+strconv.Itoa(len(names)))
				return
			}
		}

		list, err := s.roms.Roms(short)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.render(c, status, "roms", gin.H{
			"system":      sys,
			"roms":        list,
			"deleted":     c.Query("deleted"),
			"deleteError": deleteErr,
		})
	}
}
