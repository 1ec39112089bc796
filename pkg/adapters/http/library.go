package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	items, err := s.app.Templates.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.app.Templates.Create(r.Context(), chi.URLParam(r, "slug"), values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.app.Templates.Get(r.Context(), chi.URLParam(r, "slug"), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.app.Templates.Update(r.Context(), chi.URLParam(r, "slug"), id, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.Templates.Delete(r.Context(), chi.URLParam(r, "slug"), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) duplicateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.app.Templates.Duplicate(r.Context(), chi.URLParam(r, "slug"), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) listIntegrations(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.Integrations.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createIntegration(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in, err := s.app.Integrations.Create(r.Context(), values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) createAdminTask(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	task, err := s.app.AdminTasks.Create(r.Context(), values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) getAdminTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	task, err := s.app.AdminTasks.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateAdminTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	task, err := s.app.AdminTasks.Update(r.Context(), id, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) completeAdminTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	task, err := s.app.AdminTasks.Complete(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
