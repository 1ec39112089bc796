package http

import (
	"net/http"

	"github.com/aretw0/onboard/pkg/forms"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listNewHires(w http.ResponseWriter, r *http.Request) {
	users, err := s.app.People.NewHires(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) addNewHire(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.app.People.AddNewHire(r.Context(), values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) getNewHire(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.app.People.NewHire(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateNewHire(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.app.People.UpdateNewHire(r.Context(), id, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) addSequences(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in struct {
		Sequences []int64 `json:"sequences"`
	}
	if err := forms.Decode(values, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.People.AddSequences(r.Context(), id, in.Sequences); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) newHireTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tl, err := s.app.People.Timeline(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

func (s *Server) newHireProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.app.People.Progress(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) completeToDo(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "userID", "todoID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fired, err := s.app.People.CompleteToDo(r.Context(), ids[0], ids[1])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if fired == nil {
		fired = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"fired": fired})
}

func (s *Server) toggleTemplate(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "userID", "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	assigned, err := s.app.People.ToggleTemplate(r.Context(), ids[0], chi.URLParam(r, "slug"), ids[1])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"assigned": assigned})
}

func (s *Server) newHireAdminTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	lists, err := s.app.AdminTasks.ForNewHire(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) listColleagues(w http.ResponseWriter, r *http.Request) {
	users, err := s.app.People.Colleagues(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) createColleague(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.app.People.CreateColleague(r.Context(), values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) updateColleague(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.app.People.UpdateColleague(r.Context(), id, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteColleague(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.People.DeleteColleague(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleResource(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "userID", "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	assigned, err := s.app.People.ToggleResource(r.Context(), ids[0], ids[1])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"assigned": assigned})
}
