package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/onboard"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the admin API of an App.
type Server struct {
	app     *onboard.App
	streams *StreamManager
}

// NewServer creates a Server on app.
func NewServer(app *onboard.App) *Server {
	return &Server{
		app:     app,
		streams: NewStreamManager(),
	}
}

// Streams exposes the SSE fan-out of sequence reload events.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// NewHandler creates a new HTTP handler for app.
func NewHandler(app *onboard.App) http.Handler {
	return NewServer(app).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(validateRequests)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Method(http.MethodGet, "/metrics", s.app.Metrics.Handler())

	r.Route("/sequences", func(r chi.Router) {
		r.Get("/", s.listSequences)
		r.Post("/", s.createSequence)
		r.Route("/{sequenceID}", func(r chi.Router) {
			r.Get("/", s.getTimeline)
			r.Delete("/", s.deleteSequence)
			r.Put("/name", s.renameSequence)
			r.Get("/events", s.subscribeSequence)
			r.Post("/conditions", s.createCondition)
			r.Put("/conditions/{conditionID}", s.updateCondition)
			r.Delete("/conditions/{conditionID}", s.deleteCondition)
		})
	})
	r.Route("/conditions/{conditionID}", func(r chi.Router) {
		r.Put("/todos", s.updateConditionToDos)
		r.Post("/items/{slug}/{itemID}", s.saveItem)
		r.Delete("/items/{slug}/{itemID}", s.removeItem)
		r.Post("/templates/{slug}/{itemID}", s.addTemplate)
		r.Post("/provisions/{itemID}", s.saveAccountProvision)
	})
	r.Get("/forms/{slug}/{itemID}", s.itemForm)
	r.Get("/choices/{slug}", s.listChoices)

	r.Route("/templates/{slug}", func(r chi.Router) {
		r.Get("/", s.listTemplates)
		r.Post("/", s.createTemplate)
		r.Get("/{itemID}", s.getTemplate)
		r.Put("/{itemID}", s.updateTemplate)
		r.Delete("/{itemID}", s.deleteTemplate)
		r.Post("/{itemID}/duplicate", s.duplicateTemplate)
	})

	r.Route("/new-hires", func(r chi.Router) {
		r.Get("/", s.listNewHires)
		r.Post("/", s.addNewHire)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", s.getNewHire)
			r.Put("/", s.updateNewHire)
			r.Post("/sequences", s.addSequences)
			r.Get("/timeline", s.newHireTimeline)
			r.Get("/progress", s.newHireProgress)
			r.Post("/todos/{todoID}/complete", s.completeToDo)
			r.Post("/items/{slug}/{itemID}/toggle", s.toggleTemplate)
			r.Get("/admin-tasks", s.newHireAdminTasks)
		})
	})
	r.Route("/colleagues", func(r chi.Router) {
		r.Get("/", s.listColleagues)
		r.Post("/", s.createColleague)
		r.Put("/{userID}", s.updateColleague)
		r.Delete("/{userID}", s.deleteColleague)
		r.Post("/{userID}/resources/{itemID}/toggle", s.toggleResource)
	})

	r.Post("/admin-tasks", s.createAdminTask)
	r.Get("/admin-tasks/{taskID}", s.getAdminTask)
	r.Put("/admin-tasks/{taskID}", s.updateAdminTask)
	r.Post("/admin-tasks/{taskID}/complete", s.completeAdminTask)

	r.Get("/integrations", s.listIntegrations)
	r.Post("/integrations", s.createIntegration)

	r.Post("/tick", s.tick)

	return enableCORS(r)
}

// observe records request durations by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.app.Metrics.ObserveRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, HX-Request, HX-Target, HX-Current-URL")
		w.Header().Set("Access-Control-Expose-Headers", "HX-Trigger")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Onboard API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "onboard-http",
		"version":     strings.TrimSpace(onboard.Version),
		"api_version": apiVersion,
	})
}

// tick handles POST /tick.
func (s *Server) tick(w http.ResponseWriter, r *http.Request) {
	report, err := s.app.Trigger.Tick(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
