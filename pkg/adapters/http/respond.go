package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/forms"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// errBadRequest marks malformed parameters and bodies.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := domain.AsValidation(err); ok {
		slog.Warn("Validation failed", "method", r.Method, "path", r.URL.Path, "fields", verr.Fields)
		writeJSON(w, http.StatusUnprocessableEntity, verr)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrProtectedCondition):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// pathID binds an integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s: %v", errBadRequest, name, err)
	}
	return id, nil
}

// pathIDs binds several integer path parameters in order.
func pathIDs(r *http.Request, names ...string) ([]int64, error) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := pathID(r, name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// queryBool binds an optional boolean query parameter ("1", "true"...).
func queryBool(r *http.Request, name string) (bool, error) {
	var v bool
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return false, fmt.Errorf("%w: invalid %s: %v", errBadRequest, name, err)
	}
	return v, nil
}

// readValues decodes a JSON object or a url-encoded form. An empty body
// yields empty values.
func readValues(r *http.Request) (forms.Values, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return forms.FromURLValues(r.PostForm), nil
	}

	values := forms.Values{}
	if r.Body == nil {
		return values, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return values, nil
}

// reload tells HTMX and SSE subscribers that the graph of sequenceID changed.
func (s *Server) reload(w http.ResponseWriter, sequenceID int64) {
	w.Header().Set("HX-Trigger", ReloadEvent)
	s.streams.Broadcast(sequenceID, strconv.FormatInt(sequenceID, 10))
}

// reloadCondition is reload for callers that only know the condition.
func (s *Server) reloadCondition(w http.ResponseWriter, r *http.Request, conditionID int64) {
	c, err := s.app.Repo.Conditions.Get(r.Context(), conditionID)
	if err != nil {
		w.Header().Set("HX-Trigger", ReloadEvent)
		return
	}
	s.reload(w, c.SequenceID)
}
