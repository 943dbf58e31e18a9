package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Route names. Templates and redirects build URLs from these.
const (
	RouteHome           = "home"
	RouteBios           = "bios"
	RouteBiosUpload     = "bios-upload"
	RouteConfig         = "config"
	RouteConfigES       = "configes"
	RouteConfigAS       = "configas"
	RouteMonitoring     = "monitoring"
	RouteMonitoringData = "monitoring-data"
	RouteLogs           = "logs"
	RouteLogsStream     = "logs-stream"
	RouteSystems        = "roms-systems"
	RouteRomsList       = "roms-list"
	RouteRomsUpload     = "roms-upload"
	RouteStatic         = "static"
	RouteMetrics        = "metrics"
)

// routeSpec is one named entry of the URL map. The first path is the
// canonical one used for reverse routing; the others are aliases.
type routeSpec struct {
	Name    string
	Methods []string
	Paths   []string
}

var (
	get     = []string{http.MethodGet}
	post    = []string{http.MethodPost}
	getPost = []string{http.MethodGet, http.MethodPost}
)

var routeTable = []routeSpec{
	{RouteHome, get, []string{"/"}},
	{RouteBios, get, []string{"/bios/"}},
	{RouteBiosUpload, post, []string{"/bios/upload"}},
	{RouteConfig, getPost, []string{"/config/"}},
	{RouteConfigES, getPost, []string{"/configes/"}},
	{RouteConfigAS, getPost, []string{"/configas/"}},
	{RouteMonitoring, get, []string{"/monitoring/"}},
	{RouteMonitoringData, get, []string{"/monitoring/data"}},
	{RouteLogs, get, []string{"/logs/"}},
	{RouteLogsStream, get, []string{"/logs/stream"}},
	{RouteSystems, get, []string{"/systems/"}},
	{RouteRomsList, getPost, []string{"/systems/roms/:system", "/systems/roms/:system/"}},
	{RouteRomsUpload, post, []string{"/systems/roms/:system/upload/"}},
	{RouteStatic, get, []string{"/static/*filepath"}},
	{RouteMetrics, get, []string{"/metrics"}},
}

// Routes returns the names of every registered route, in table order.
func Routes() []string {
	names := make([]string, len(routeTable))
	for i, r := range routeTable {
		names[i] = r.Name
	}
	return names
}

func lookupRoute(name string) (routeSpec, bool) {
	for _, r := range routeTable {
		if r.Name == name {
			return r, true
		}
	}
	return routeSpec{}, false
}

// URL builds the path of the named route, filling its parameters in order.
func URL(name string, params ...string) (string, error) {
	r, ok := lookupRoute(name)
	if !ok {
		return "", fmt.Errorf("web: unknown route %q", name)
	}
	segs := strings.Split(r.Paths[0], "/")
	used := 0
	for i, seg := range segs {
		if seg == "" || (seg[0] != ':' && seg[0] != '*') {
			continue
		}
		if used >= len(params) {
			return "", fmt.Errorf("web: route %q needs more than %d parameters", name, len(params))
		}
		p := params[used]
		used++
		if seg[0] == '*' {
			segs[i] = strings.TrimPrefix(p, "/")
			continue
		}
		if p == "" {
			return "", fmt.Errorf("web: route %q: empty parameter %s", name, seg)
		}
		segs[i] = url.PathEscape(p)
	}
	if used != len(params) {
		return "", fmt.Errorf("web: route %q takes %d parameters, got %d", name, used, len(params))
	}
	return strings.Join(segs, "/"), nil
}

// mustURL is for route names fixed at compile time.
func mustURL(name string, params ...string) string {
	u, err := URL(name, params...)
	if err != nil {
		panic(err)
	}
	return u
}

// registerRoutes wires every route of the table to its handler.
func (s *Server) registerRoutes(router *gin.Engine) {
	handlers := map[string]gin.HandlerFunc{
		RouteHome:           s.handleHome(),
		RouteBios:           s.handleBios(),
		RouteBiosUpload:     s.handleBiosUpload(),
		RouteConfig:         s.handleSettings(s.pages[RouteConfig]),
		RouteConfigES:       s.handleSettings(s.pages[RouteConfigES]),
		RouteConfigAS:       s.handleSettings(s.pages[RouteConfigAS]),
		RouteMonitoring:     s.handleMonitoring(),
		RouteMonitoringData: s.handleMonitoringData(),
		RouteLogs:           s.handleLogs(),
		RouteLogsStream:     s.handleLogsStream(),
		RouteSystems:        s.handleSystems(),
		RouteRomsList:       s.handleRomsList(),
		RouteRomsUpload:     s.handleRomsUpload(),
		RouteStatic:         s.handleStatic(),
		RouteMetrics:        gin.WrapH(metricsHandler()),
	}
	for _, r := range routeTable {
		h, ok := handlers[r.Name]
		if !ok {
			panic("web: no handler for route " + r.Name)
		}
		for _, p := range r.Paths {
			for _, m := range r.Methods {
				router.Handle(m, p, h)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, "Page not found")
	})
	router.NoMethod(func(c *gin.Context) {
		s.renderError(c, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
