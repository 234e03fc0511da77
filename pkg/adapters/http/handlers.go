package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Catneko-0422/tuerulebase"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
)

const decodeFailedMessage = "Decoding failed: No matching rule found or code is incomplete"

type rulePayload struct {
	Name        *string `mapstructure:"name"`
	TotalLength *int    `mapstructure:"total_length"`
}

type nodePayload struct {
	RuleID           *int64 `mapstructure:"rule_id"`
	ParentID         *int64 `mapstructure:"parent_id"`
	Name             *string
	SegmentLength    *int   `mapstructure:"segment_length"`
	NodeType         string `mapstructure:"node_type"`
	Code             string
	ValueRegex       string `mapstructure:"value_regex"`
	ValuePlaceholder string `mapstructure:"value_placeholder"`
	SortOrder        int    `mapstructure:"sort_order"`
	Description      string
}

type decodePayload struct {
	Code   string
	RuleID int64 `mapstructure:"rule_id"`
}

type composePayload struct {
	Picks []domain.Pick
}

// nodeListing is a node plus whether it has children, so a client knows
// whether to render another level.
type nodeListing struct {
	domain.Node
	HasChildren bool `json:"has_children"`
}

// ListRules handles GET /api/coding-rules.
func (s *Server) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.Engine.Store().ListRules(r.Context())
	if err != nil {
		s.fail(w, r, "list rules", err)
		return
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rules})
}

// CreateRule handles POST /api/coding-rules.
func (s *Server) CreateRule(w http.ResponseWriter, r *http.Request) {
	var body rulePayload
	if !s.bind(w, r, &body) {
		return
	}
	if body.Name == nil || *body.Name == "" {
		writeMessage(w, http.StatusBadRequest, "Name is required")
		return
	}
	rule := domain.Rule{Name: *body.Name, TotalLength: domain.DefaultTotalLength, Active: true}
	if body.TotalLength != nil {
		rule.TotalLength = *body.TotalLength
	}
	rule, err := s.Engine.Store().CreateRule(r.Context(), rule)
	if err != nil {
		s.fail(w, r, "create rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Rule created", "id": rule.ID})
}

// ListNodes handles GET /api/coding-rules/{ruleID}/nodes.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	ruleID, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid rule id")
		return
	}
	var parentID *int64
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid parent_id")
			return
		}
		parentID = &id
	}
	key, err := domain.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	store := s.Engine.Store()
	nodes, err := store.ListNodes(r.Context(), ruleID, parentID, key)
	if err != nil {
		s.fail(w, r, "list nodes", err)
		return
	}
	out := make([]nodeListing, 0, len(nodes))
	for _, n := range nodes {
		has, err := store.HasChildren(r.Context(), n.ID)
		if err != nil {
			s.fail(w, r, "list nodes", err)
			return
		}
		out = append(out, nodeListing{Node: n, HasChildren: has})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

// CreateNode handles POST /api/coding-rules/nodes.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var body nodePayload
	if !s.bind(w, r, &body) {
		return
	}
	if body.RuleID == nil || body.Name == nil || body.SegmentLength == nil {
		writeMessage(w, http.StatusBadRequest, "Missing required fields: rule_id, name, segment_length")
		return
	}

	nodeType := domain.NodeTypeStatic
	if body.NodeType != "" {
		nodeType, _ = domain.ParseNodeType(body.NodeType)
	}
	node := domain.Node{
		RuleID:           *body.RuleID,
		ParentID:         body.ParentID,
		Name:             *body.Name,
		Type:             nodeType,
		SegmentLength:    *body.SegmentLength,
		Code:             body.Code,
		ValueRegex:       body.ValueRegex,
		ValuePlaceholder: body.ValuePlaceholder,
		SortOrder:        body.SortOrder,
		Description:      body.Description,
	}
	if err := domain.ValidateNode(node); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := s.Engine.Store().CreateNode(r.Context(), node)
	if err != nil {
		s.fail(w, r, "create node", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Node created", "id": node.ID})
}

// DeleteNode handles DELETE /api/coding-rules/nodes/{nodeID}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "nodeID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid node id")
		return
	}
	if err := s.Engine.Store().DeleteNode(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNodeHasChildren) {
			s.Logger.Warn("Failed to delete node: has children", "node_id", id)
			writeMessage(w, http.StatusConflict, "Cannot delete node: it has associated children or data.")
			return
		}
		s.fail(w, r, "delete node", err)
		return
	}
	writeMessage(w, http.StatusOK, "Node deleted")
}

// Decode handles POST /api/coding-rules/decode.
func (s *Server) Decode(w http.ResponseWriter, r *http.Request) {
	var body decodePayload
	if !s.bind(w, r, &body) {
		return
	}
	res, err := s.Engine.Decode(r.Context(), body.Code, body.RuleID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDecodeFailed):
			writeMessage(w, http.StatusNotFound, decodeFailedMessage)
		case errors.Is(err, tuerulebase.ErrEmptyCode):
			writeMessage(w, http.StatusBadRequest, "Code is required")
		default:
			s.fail(w, r, "decode", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Decode successful", "data": res.Segments})
}

// Compose handles POST /api/coding-rules/compose.
func (s *Server) Compose(w http.ResponseWriter, r *http.Request) {
	var body composePayload
	if !s.bind(w, r, &body) {
		return
	}
	comp, err := s.Engine.Compose(r.Context(), body.Picks)
	if err != nil {
		s.fail(w, r, "compose", err)
		return
	}
	writeJSON(w, http.StatusOK, comp)
}

// bind decodes a JSON object body into out. Numbers sent as strings are
// accepted, as form-driven clients send them.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, out any) bool {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		writeMessage(w, http.StatusBadRequest, "No input data provided")
		s.Logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		s.fail(w, r, "bind", err)
		return false
	}
	if err := dec.Decode(raw); err != nil {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// fail maps domain errors to status codes and logs server faults.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "op", op, "path", r.URL.Path, "err", err)
		writeMessage(w, status, "Internal Server Error")
		return
	}
	s.Logger.Warn("request rejected", "op", op, "path", r.URL.Path, "err", err)
	writeMessage(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidPick):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRuleNotFound), errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrDecodeFailed):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNodeHasChildren):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
