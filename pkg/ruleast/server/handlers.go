package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
	"github.com/randalmurphal/ruleast/pkg/ruleast/observability"
	"github.com/randalmurphal/ruleast/pkg/ruleast/store"
)

type evaluateResponse struct {
	Result bool `json:"result"`
}

type ruleResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Rule      string          `json:"rule"`
	Tree      json.RawMessage `json:"tree"`
	CreatedAt time.Time       `json:"created_at"`
}

type infoResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rule      string    `json:"rule"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func toRuleResponse(r store.Rule) ruleResponse {
	return ruleResponse{
		ID:        r.ID,
		Name:      r.Name,
		Rule:      r.Text,
		Tree:      r.Tree,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Server) writeTree(w http.ResponseWriter, tree ast.Node) error {
	body, err := ast.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	writeRaw(w, http.StatusOK, body)
	return nil
}

// POST /create_rule {"rule": "..."}
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) error {
	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := parseBody(w, r, p)
	if err != nil {
		return err
	}
	rule, err := stringField(v, "rule")
	if err != nil {
		return err
	}

	tree, err := s.manager.CreateRule(r.Context(), rule)
	if err != nil {
		return err
	}
	return s.writeTree(w, tree)
}

// POST /combine_rules {"rules": ["...", "..."]}
func (s *Server) handleCombineRules(w http.ResponseWriter, r *http.Request) error {
	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := parseBody(w, r, p)
	if err != nil {
		return err
	}
	rules, err := stringsField(v, "rules")
	if err != nil {
		return err
	}

	tree, err := s.manager.CombineRules(r.Context(), rules)
	if err != nil {
		return err
	}
	return s.writeTree(w, tree)
}

// POST /evaluate_rule {"rule": "...", "data": {...}}
func (s *Server) handleEvaluateRule(w http.ResponseWriter, r *http.Request) error {
	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := parseBody(w, r, p)
	if err != nil {
		return err
	}
	rule, err := stringField(v, "rule")
	if err != nil {
		return err
	}
	record, err := recordField(v, "data")
	if err != nil {
		return err
	}

	result, err := s.manager.Evaluate(r.Context(), rule, record)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Result: result})
	return nil
}

// POST /rules {"name": "...", "rule": "..."}
func (s *Server) handleSaveRule(w http.ResponseWriter, r *http.Request) error {
	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := parseBody(w, r, p)
	if err != nil {
		return err
	}
	rule, err := stringField(v, "rule")
	if err != nil {
		return err
	}
	name, err := optionalString(v, "name")
	if err != nil {
		return err
	}

	tree, err := s.manager.CreateRule(r.Context(), rule)
	if err != nil {
		return err
	}
	encoded, err := ast.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}

	stored := store.Rule{
		ID:        uuid.NewString(),
		Name:      name,
		Text:      rule,
		Tree:      encoded,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(stored); err != nil {
		return fmt.Errorf("save rule: %w", err)
	}

	observability.EnrichLogger(s.logger, stored.ID, name).Info("rule saved", "fields", len(ast.Fields(tree)))
	writeJSON(w, http.StatusCreated, toRuleResponse(stored))
	return nil
}

// GET /rules
func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) error {
	infos, err := s.store.List()
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}

	out := make([]infoResponse, len(infos))
	for i, info := range infos {
		out[i] = infoResponse{
			ID:        info.ID,
			Name:      info.Name,
			Rule:      info.Text,
			Size:      info.Size,
			CreatedAt: info.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

// load fetches a stored rule. Malformed IDs are reported as not found.
func (s *Server) load(id string) (store.Rule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return store.Rule{}, store.ErrNotFound
	}
	return s.store.Load(id)
}

// loadTree fetches a stored rule and decodes its tree.
func (s *Server) loadTree(id string) (store.Rule, ast.Node, error) {
	stored, err := s.load(id)
	if err != nil {
		return store.Rule{}, nil, err
	}
	tree, err := ast.Unmarshal(stored.Tree)
	if err != nil {
		// not wrapped: a corrupt stored tree is a 500, not a 422
		return store.Rule{}, nil, fmt.Errorf("decode stored rule %s: %v", id, err)
	}
	return stored, tree, nil
}

// GET /rules/{id}
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) error {
	stored, err := s.load(r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toRuleResponse(stored))
	return nil
}

// DELETE /rules/{id}
//
// The rule's text is also dropped from the manager's tree cache.
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) error {
	stored, err := s.load(r.PathValue("id"))
	if err != nil {
		return err
	}
	if err := s.store.Delete(stored.ID); err != nil {
		return err
	}
	s.manager.Forget(stored.Text)

	observability.EnrichLogger(s.logger, stored.ID, stored.Name).Info("rule deleted")
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /rules/{id}/evaluate {"data": {...}}
func (s *Server) handleEvaluateStored(w http.ResponseWriter, r *http.Request) error {
	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := parseBody(w, r, p)
	if err != nil {
		return err
	}
	record, err := recordField(v, "data")
	if err != nil {
		return err
	}

	stored, tree, err := s.loadTree(r.PathValue("id"))
	if err != nil {
		return err
	}
	result, err := s.manager.EvaluateTree(r.Context(), tree, record)
	if err != nil {
		return err
	}
	observability.EnrichLogger(s.logger, stored.ID, stored.Name).Debug("stored rule evaluated", "result", result)
	writeJSON(w, http.StatusOK, evaluateResponse{Result: result})
	return nil
}

// POST /rules/combine {"ids": ["...", "..."]}
func (s *Server) handleCombineStored(w http.ResponseWriter, r *http.Request) error {
	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := parseBody(w, r, p)
	if err != nil {
		return err
	}
	ids, err := stringsField(v, "ids")
	if err != nil {
		return err
	}

	trees := make([]ast.Node, len(ids))
	for i, id := range ids {
		_, tree, err := s.loadTree(id)
		if err != nil {
			return err
		}
		trees[i] = tree
	}

	tree, err := s.manager.CombineTrees(r.Context(), trees)
	if err != nil {
		return err
	}
	return s.writeTree(w, tree)
}
