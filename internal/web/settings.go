package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/retromgr/internal/config"
	"github.com/zulandar/retromgr/internal/confile"
	"github.com/zulandar/retromgr/internal/esconfig"
	"github.com/zulandar/retromgr/internal/forms"
)

// settingsStore persists the values of one settings form.
type settingsStore interface {
	Load() (map[string]string, error)
	Save(form forms.Form, values map[string]string) error
}

// confStore keeps values in a key=value file.
type confStore struct{ path string }

func (s confStore) Load() (map[string]string, error) {
	f, err := confile.Load(s.path)
	if err != nil {
		return nil, err
	}
	return f.Values(), nil
}

func (s confStore) Save(form forms.Form, values map[string]string) error {
	f, err := confile.Load(s.path)
	if err != nil {
		return err
	}
	for _, fd := range form.Fields {
		v := values[fd.Key]
		if v == "" && fd.Optional {
			f.Unset(fd.Key)
			continue
		}
		if err := f.Set(fd.Key, v); err != nil {
			return err
		}
	}
	return f.Save(s.path)
}

// esStore keeps values in an EmulationStation settings document.
type esStore struct{ path string }

func (s esStore) Load() (map[string]string, error) {
	doc, err := esconfig.Load(s.path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, st := range doc.All() {
		out[st.Name] = st.Value
	}
	return out, nil
}

func (s esStore) Save(form forms.Form, values map[string]string) error {
	doc, err := esconfig.Load(s.path)
	if err != nil {
		return err
	}
	for _, fd := range form.Fields {
		if err := doc.Set(fd.Key, esKind(fd.Kind), values[fd.Key]); err != nil {
			return err
		}
	}
	return doc.Save(s.path)
}

func esKind(k forms.Kind) esconfig.Kind {
	switch k {
	case forms.KindBool:
		return esconfig.Bool
	case forms.KindInt:
		return esconfig.Int
	case forms.KindFloat:
		return esconfig.Float
	}
	return esconfig.String
}

// settingsPage binds a form to the route that edits it and its file.
type settingsPage struct {
	route string
	form  forms.Form
	store settingsStore
	path  string
}

func settingsPages(p config.PathsConfig) map[string]*settingsPage {
	return map[string]*settingsPage{
		RouteConfig:   {route: RouteConfig, form: forms.Recalbox, store: confStore{p.RecalboxConf}, path: p.RecalboxConf},
		RouteConfigES: {route: RouteConfigES, form: forms.EmulationStation, store: esStore{p.ESSettings}, path: p.ESSettings},
		RouteConfigAS: {route: RouteConfigAS, form: forms.Audio, store: confStore{p.AudioConf}, path: p.AudioConf},
	}
}

// fieldView is a form field prepared for rendering.
type fieldView struct {
	forms.Field
	Value string
	On    bool
	Error string
}

func fieldViews(form forms.Form, values, errs map[string]string) []fieldView {
	out := make([]fieldView, 0, len(form.Fields))
	for _, fd := range form.Fields {
		v := values[fd.Key]
		out = append(out, fieldView{Field: fd, Value: v, On: forms.IsOn(v), Error: errs[fd.Key]})
	}
	return out
}

func (s *Server) handleSettings(page *settingsPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost {
			s.saveSettings(c, page)
			return
		}
		stored, err := page.store.Load()
		if err != nil {
			s.fail(c, err)
			return
		}
		s.renderSettings(c, http.StatusOK, page, page.form.Current(stored), nil)
	}
}

func (s *Server) saveSettings(c *gin.Context, page *settingsPage) {
	if err := c.Request.ParseForm(); err != nil {
		s.renderError(c, http.StatusBadRequest, "Malformed form submission")
		return
	}
	res := page.form.Bind(c.Request.PostForm)
	if !res.OK() {
		s.renderSettings(c, http.StatusBadRequest, page, res.Values, res.Errors)
		return
	}
	if err := page.store.Save(page.form, res.Values); err != nil {
		s.fail(c, err)
		return
	}
	s.log.Info().Str("form", page.form.Name).Str("path", page.path).Msg("settings saved")
	c.Redirect(http.StatusSeeOther, mustURL(page.route)+"?saved=1")
}

func (s *Server) renderSettings(c *gin.Context, status int, page *settingsPage, values, errs map[string]string) {
	s.render(c, status, "settings", gin.H{
		"form":   page.form,
		"route":  page.route,
		"path":   page.path,
		"fields": fieldViews(page.form, values, errs),
		"saved":  c.Query("saved") == "1",
		"failed": len(errs) > 0,
	})
}
