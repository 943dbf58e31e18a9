package web

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/retromgr/internal/bios"
	"github.com/zulandar/retromgr/internal/db"
	"github.com/zulandar/retromgr/internal/fsutil"
	"github.com/zulandar/retromgr/internal/models"
	"github.com/zulandar/retromgr/internal/notify"
	"github.com/zulandar/retromgr/internal/roms"
)

// uploadField is the multipart field carrying the files.
const uploadField = "files"

// uploadedFile is the per-file outcome reported to the browser.
type uploadedFile struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	MD5   string `json:"md5"`
	Known bool   `json:"known"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type uploadResponse struct {
	Files []uploadedFile `json:"files"`
}

// saveFunc stores one uploaded file.
type saveFunc func(name string, fh *multipart.FileHeader) uploadedFile

func (s *Server) handleBiosUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.receiveUploads(c, models.UploadBios, "", func(name string, fh *multipart.FileHeader) uploadedFile {
			f, err := fh.Open()
			if err != nil {
				return uploadedFile{Name: name, Error: err.Error()}
			}
			defer f.Close()
			res, err := s.bios.Save(name, f)
			if errors.Is(err, bios.ErrKeepValid) {
				return uploadedFile{Name: res.Name, Size: res.Size, MD5: res.MD5, Known: true, Error: err.Error()}
			}
			if err != nil {
				return uploadedFile{Name: name, Error: err.Error()}
			}
			return uploadedFile{Name: res.Name, Size: res.Size, MD5: res.MD5, Known: res.Known, Valid: res.Valid}
		})
	}
}

func (s *Server) handleRomsUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		short := c.Param("system")
		sys, err := s.roms.System(short)
		if errors.Is(err, roms.ErrUnknownSystem) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown system %q", short)})
			return
		}
		if err != nil {
			_ = c.Error(err)
			s.log.Error().Err(err).Str("system", short).Msg("look up system")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "system lookup failed"})
			return
		}
		s.receiveUploads(c, models.UploadRom, short, func(name string, fh *multipart.FileHeader) uploadedFile {
			f, err := fh.Open()
			if err != nil {
				return uploadedFile{Name: name, Error: err.Error()}
			}
			defer f.Close()
			res, err := s.roms.Save(short, name, f)
			if err != nil {
				return uploadedFile{Name: name, Known: sys.Known, Error: err.Error()}
			}
			return uploadedFile{Name: res.Name, Size: res.Size, MD5: res.MD5, Known: sys.Known, Valid: true}
		})
	}
}

// receiveUploads stores every file of the multipart form, records the
// stored ones and answers 200 when at least one was stored.
func (s *Server) receiveUploads(c *gin.Context, kind, system string, save saveFunc) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a multipart form"})
		return
	}
	headers := form.File[uploadField]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files in field " + uploadField})
		return
	}

	ctx := c.Request.Context()
	resp := uploadResponse{Files: make([]uploadedFile, 0, len(headers))}
	var stored []uploadedFile
	for _, fh := range headers {
		out := save(fsutil.BaseName(fh.Filename), fh)
		if out.Error != "" {
			uploadsTotal.WithLabelValues(kind, "rejected").Inc()
			s.log.Warn().Str("kind", kind).Str("file", out.Name).Str("error", out.Error).Msg("upload rejected")
		} else {
			uploadsTotal.WithLabelValues(kind, "stored").Inc()
			uploadBytes.WithLabelValues(kind).Add(float64(out.Size))
			stored = append(stored, out)
			rec := &models.UploadRecord{
				Kind:     kind,
				System:   system,
				FileName: out.Name,
				Size:     out.Size,
				MD5:      out.MD5,
				Valid:    out.Valid,
			}
			if err := db.RecordUpload(s.db.WithContext(ctx), rec); err != nil {
				s.log.Error().Err(err).Msg("record upload")
			}
		}
		resp.Files = append(resp.Files, out)
	}

	status := http.StatusOK
	if len(stored) == 0 {
		status = http.StatusBadRequest
	} else {
		s.announceUploads(ctx, kind, system, stored)
	}
	c.JSON(status, resp)
}

// announceUploads sends a chat notification listing the stored files.
func (s *Server) announceUploads(ctx context.Context, kind, system string, files []uploadedFile) {
	title := fmt.Sprintf("%s: %d BIOS file(s) uploaded", s.cfg.Site.Name, len(files))
	if kind == models.UploadRom {
		title = fmt.Sprintf("%s: %d ROM(s) uploaded to %s", s.cfg.Site.Name, len(files), system)
	}
	sev := notify.SeveritySuccess
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
		if !f.Valid {
			sev = notify.SeverityWarning
		}
	}
	evt := notify.Event{
		Title:    title,
		Body:     strings.Join(names, "\n"),
		Severity: sev,
	}
	if err := s.notifier.Notify(ctx, evt); err != nil {
		s.log.Error().Err(err).Msg("send upload notification")
	}
}
