package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/upb/parking-console/internal/auth"
	"github.com/upb/parking-console/internal/routeguard"
	"github.com/upb/parking-console/middleware"
	"github.com/upb/parking-console/services"
	"github.com/upb/parking-console/utils"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

var shellTemplate = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Bootstrap is handed to the SPA bundle so it can render the admitted page
// without asking the server again
type Bootstrap struct {
	Page     string            `json:"page"`
	Path     string            `json:"path"`
	Params   map[string]string `json:"params,omitempty"`
	Role     string            `json:"role,omitempty"`
	Admin    bool              `json:"admin,omitempty"`
	Username string            `json:"username,omitempty"`
}

type shellData struct {
	Title     string
	Page      string
	SignedIn  bool
	Role      string
	Username  string
	Dashboard string
	Login     string
	Bootstrap Bootstrap
}

// PageHandler renders the SPA shell for admitted navigations
type PageHandler struct {
	landing routeguard.Landing
	logger  *zap.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(landing routeguard.Landing, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		landing: landing,
		logger:  logger,
	}
}

// HandlePage handles GET on every page route. It must run behind the gate.
func (h *PageHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	route, ok := middleware.GetRouteFromContext(r.Context())
	if !ok {
		h.logger.Error("page served without gate",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path))
		HandleServiceError(w, services.ErrInternal, h.logger)
		return
	}

	params := urlParams(r)
	if id, ok := params["id"]; ok {
		if _, err := utils.ValidatePathID(id); err != nil {
			_ = utils.WriteNotFound(w, "")
			return
		}
	}

	data := shellData{
		Title: pageTitle(route),
		Page:  route.Page,
		Login: h.landing.Login,
		Bootstrap: Bootstrap{
			Page:   route.Page,
			Path:   r.URL.Path,
			Params: params,
		},
	}
	if p := middleware.GetPrincipalFromContext(r.Context()); p != nil {
		data.SignedIn = true
		data.Role = p.Role.String()
		data.Username = p.Username
		data.Dashboard = h.landing.For(p.Role)
		data.Bootstrap.Role = p.Role.String()
		data.Bootstrap.Admin = p.IsAdmin()
		data.Bootstrap.Username = p.Username
	}

	var buf bytes.Buffer
	if err := shellTemplate.ExecuteTemplate(&buf, "shell", data); err != nil {
		HandleServiceError(w, services.WrapInternal("render page shell "+route.Page, err), h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleNotFound answers navigations to paths outside the route table
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteNotFound(w, "")
}

// HandleMethodNotAllowed answers unsupported methods on known paths
func (h *PageHandler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

func urlParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}

// pageTitle turns "admin/edit-lot" into "Edit Lot"
func pageTitle(route routeguard.Route) string {
	page := route.Page
	if i := strings.LastIndex(page, "/"); i >= 0 {
		page = page[i+1:]
	}
	words := strings.Fields(strings.ReplaceAll(page, "-", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if len(words) == 0 {
		return "Vehicle Parking"
	}
	title := strings.Join(words, " ")
	if route.Access.RequiresRole == auth.RoleAdmin {
		title = "Admin · " + title
	}
	return title
}
