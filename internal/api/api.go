// Package api serves stored attribute resources over HTTP
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/conduit-lang/attrkit/internal/codec/jsonio"
	"github.com/conduit-lang/attrkit/internal/codec/xmlio"
	"github.com/conduit-lang/attrkit/internal/logger"
	"github.com/conduit-lang/attrkit/internal/workspace"
)

// MaxDocumentSize bounds imported request bodies
const MaxDocumentSize = 16 << 20

var errBadRequest = errors.New("bad request")

// Handler serves the resource endpoints
type Handler struct {
	ws   *workspace.Workspace
	log  *zap.Logger
	auth *Authenticator
}

// NewHandler creates a handler over ws
func NewHandler(ws *workspace.Workspace, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{ws: ws, log: log}
}

// WithAuth requires a token with ScopeWrite for importing and deleting
func (h *Handler) WithAuth(a *Authenticator) *Handler {
	h.auth = a
	return h
}

// Router returns the chi router with every route mounted
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logging)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/resources", func(r chi.Router) {
		r.Get("/", h.list)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.describe)
			r.Get("/xml", h.document)
			r.Group(func(r chi.Router) {
				if h.auth != nil {
					r.Use(h.auth.Require(ScopeWrite))
				}
				r.Post("/", h.importDocument(false))
				r.Put("/", h.importDocument(true))
				r.Delete("/", h.delete)
			})
		})
	})
	return r
}

// logging records one line per request through zap
func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	docs, err := h.ws.List(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]interface{}{
			"id":         d.ID,
			"name":       d.Name,
			"version":    d.Version,
			"updated_at": d.UpdatedAt,
			"loaded":     h.ws.IsLoaded(d.ID),
		})
	}
	renderJSON(w, http.StatusOK, out)
}

// describeOptions reads ?level=N&categories=a,b
func describeOptions(r *http.Request) (jsonio.Options, error) {
	var opts jsonio.Options
	q := r.URL.Query()
	if level := q.Get("level"); level != "" {
		n, err := strconv.ParseUint(level, 10, 32)
		if err != nil {
			return opts, fmt.Errorf("%w: invalid level %q", errBadRequest, level)
		}
		opts.AdvanceLevel = uint(n)
	}
	if cats := q.Get("categories"); cats != "" {
		for _, c := range strings.Split(cats, ",") {
			if c = strings.TrimSpace(c); c != "" {
				opts.Categories = append(opts.Categories, c)
			}
		}
	}
	return opts, nil
}

func (h *Handler) describe(w http.ResponseWriter, r *http.Request) {
	opts, err := describeOptions(r)
	if err != nil {
		renderError(w, err)
		return
	}
	loaded, err := h.ws.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		renderError(w, err)
		return
	}

	lock := h.ws.Lock(loaded.Resource.ID())
	lock.RLock()
	desc := jsonio.Describe(loaded.Resource, opts)
	lock.RUnlock()

	renderJSON(w, http.StatusOK, desc)
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.ws.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		renderError(w, err)
		return
	}

	lock := h.ws.Lock(loaded.Resource.ID())
	lock.RLock()
	body, err := xmlio.WriteString(loaded.Resource)
	lock.RUnlock()
	if err != nil {
		renderError(w, err)
		return
	}

	if writeConditional(w, r, body) {
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

// ImportResponse reports an imported document and its parse records
type ImportResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Version int             `json:"version"`
	Records []logger.Record `json:"records"`
}

func (h *Handler) importDocument(replace bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, MaxDocumentSize)
		loaded, err := h.ws.Import(r.Context(), chi.URLParam(r, "name"), body, replace)
		if err != nil {
			renderError(w, err)
			return
		}
		status := http.StatusCreated
		if replace {
			status = http.StatusOK
		}
		h.log.Debug("document imported", zap.String("subject", Subject(r.Context())), zap.Bool("replace", replace))
		renderJSON(w, status, &ImportResponse{
			ID:      loaded.Document.ID.String(),
			Name:    loaded.Document.Name,
			Version: loaded.Document.Version,
			Records: loaded.Log.Records(),
		})
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		renderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
