package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listSequences(w http.ResponseWriter, r *http.Request) {
	seqs, err := s.app.Sequences.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seqs)
}

func (s *Server) createSequence(w http.ResponseWriter, r *http.Request) {
	seq, err := s.app.Sequences.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, seq)
}

func (s *Server) getTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sequenceID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tl, err := s.app.Sequences.Timeline(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

func (s *Server) renameSequence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sequenceID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	seq, err := s.app.Sequences.Rename(r.Context(), id, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seq)
}

func (s *Server) deleteSequence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sequenceID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.Sequences.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createCondition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sequenceID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.app.Sequences.CreateCondition(r.Context(), id, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reload(w, id)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCondition(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "sequenceID", "conditionID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.app.Sequences.UpdateCondition(r.Context(), ids[0], ids[1], values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reload(w, ids[0])
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCondition(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "sequenceID", "conditionID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.Sequences.DeleteCondition(r.Context(), ids[0], ids[1]); err != nil {
		s.fail(w, r, err)
		return
	}
	s.reload(w, ids[0])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateConditionToDos(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "conditionID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.app.Sequences.UpdateConditionToDos(r.Context(), id, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reload(w, view.SequenceID)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) itemForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	form, err := s.app.Sequences.ItemForm(r.Context(), chi.URLParam(r, "slug"), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) saveItem(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "conditionID", "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.app.Sequences.SaveItem(r.Context(), chi.URLParam(r, "slug"), ids[1], ids[0], values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reloadCondition(w, r, ids[0])
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) saveAccountProvision(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "conditionID", "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	exists, err := queryBool(r, "exists")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	values, err := readValues(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.app.Sequences.SaveAccountProvision(r.Context(), ids[1], ids[0], exists, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reloadCondition(w, r, ids[0])
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) addTemplate(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "conditionID", "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.app.Sequences.AddTemplate(r.Context(), ids[0], chi.URLParam(r, "slug"), ids[1])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reload(w, view.SequenceID)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "conditionID", "itemID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.app.Sequences.RemoveItem(r.Context(), ids[0], chi.URLParam(r, "slug"), ids[1]); err != nil {
		s.fail(w, r, err)
		return
	}
	s.reloadCondition(w, r, ids[0])
	w.WriteHeader(http.StatusNoContent)
}

// listChoices serves the pickers of the sequence editor.
func (s *Server) listChoices(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.app.Sequences.ListTemplates(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}
