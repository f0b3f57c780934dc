// Package models defines the core data structures shared by the document
// store, the transports and the record cache.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Document is an open mapping of fields, as stored in a collection. Every
// document carries a unique "id" (string or number, compared by string form).
type Document map[string]any

// Clone returns a deep copy of the document, so callers can never reach into
// store-owned state.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Document:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Stringify renders a field value the way collection membership and query
// matching compare it: numbers without a trailing ".0", nil as the empty
// string, compound values as their JSON encoding.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// Pair is one in/out punch of a working day. Both fields hold "HH:mm"
// time-of-day strings; either may be empty while the user is still typing.
type Pair struct {
	In  string `json:"in"`
	Out string `json:"out"`
}

// Status is the workflow state of a day record.
type Status string

const (
	StatusRascunho  Status = "rascunho"  // draft, initial
	StatusPronto    Status = "pronto"    // ready for submission
	StatusEnviado   Status = "enviado"   // submitted, awaiting review
	StatusAprovado  Status = "aprovado"  // approved by a reviewer
	StatusReprovado Status = "reprovado" // rejected by a reviewer
	StatusFechado   Status = "fechado"   // closed, terminal unless reopened
)

// Meta carries the workflow bookkeeping of a day record.
type Meta struct {
	// Revision only increases; it goes up by one each time the record is
	// reopened after approval, rejection or closure.
	Revision int `json:"revision"`
	// Locked blocks user edits while the record is under review or closed.
	Locked      bool   `json:"locked"`
	SubmittedAt string `json:"submittedAt,omitempty"`
	ReviewedAt  string `json:"reviewedAt,omitempty"`
	ReviewerID  int    `json:"reviewerId,omitempty"`
	ReviewNote  string `json:"reviewNote,omitempty"`
}

// HistoryEntry is one audit record of a workflow transition.
type HistoryEntry struct {
	ID     string `json:"id"`
	At     string `json:"at"`
	Action string `json:"action"`
	From   Status `json:"from"`
	To     Status `json:"to"`
	By     int    `json:"by,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// RecordID derives the deterministic composite id for a day record:
// "YYYYMMDD-<userId>". Two concurrent create-if-absent attempts for the same
// (userId, day) converge on the same id instead of duplicating the record.
func RecordID(userID int, day string) string {
	ymd := strings.ReplaceAll(day, "-", "")
	return fmt.Sprintf("%s-%d", ymd, userID)
}

// Record is the typed view of a time-tracking document. Fields the cache does
// not know about survive round trips in Extra.
type Record struct {
	ID        string
	UserID    int
	Data      string
	Pares     []Pair
	TotalMin  int
	Status    Status
	Meta      Meta
	History   []HistoryEntry
	CreatedAt string
	UpdatedAt string
	Extra     map[string]any
}

// recordKnown lists the fixed field set of Record; everything else goes to Extra.
var recordKnown = map[string]struct{}{
	"id": {}, "userId": {}, "data": {}, "pares": {}, "totalMin": {},
	"status": {}, "meta": {}, "history": {}, "createdAt": {}, "updatedAt": {},
}

// RecordFromDocument decodes an open document into the typed record view.
func RecordFromDocument(doc Document) (Record, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Record{}, fmt.Errorf("encode document: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Document converts the record back to its open-document form.
func (r Record) Document() Document {
	doc := make(Document, len(r.Extra)+10)
	for k, v := range r.Extra {
		doc[k] = cloneValue(v)
	}
	if r.ID != "" {
		doc["id"] = r.ID
	}
	doc["userId"] = r.UserID
	doc["data"] = r.Data
	doc["pares"] = pairsToAny(r.Pares)
	doc["totalMin"] = r.TotalMin
	if r.Status != "" {
		doc["status"] = string(r.Status)
	}
	doc["meta"] = metaToAny(r.Meta)
	doc["history"] = historyToAny(r.History)
	if r.CreatedAt != "" {
		doc["createdAt"] = r.CreatedAt
	}
	if r.UpdatedAt != "" {
		doc["updatedAt"] = r.UpdatedAt
	}
	return doc
}

// UnmarshalJSON accepts both server-issued numeric ids and composite string
// ids, and keeps unknown fields in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields struct {
		ID        any            `json:"id"`
		UserID    int            `json:"userId"`
		Data      string         `json:"data"`
		Pares     []Pair         `json:"pares"`
		TotalMin  int            `json:"totalMin"`
		Status    Status         `json:"status"`
		Meta      Meta           `json:"meta"`
		History   []HistoryEntry `json:"history"`
		CreatedAt string         `json:"createdAt"`
		UpdatedAt string         `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var open map[string]any
	if err := json.Unmarshal(data, &open); err != nil {
		return err
	}
	r.ID = Stringify(fields.ID)
	r.UserID = fields.UserID
	r.Data = fields.Data
	r.Pares = fields.Pares
	r.TotalMin = fields.TotalMin
	r.Status = fields.Status
	r.Meta = fields.Meta
	r.History = fields.History
	r.CreatedAt = fields.CreatedAt
	r.UpdatedAt = fields.UpdatedAt
	r.Extra = nil
	for k, v := range open {
		if _, known := recordKnown[k]; known {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[k] = v
	}
	return nil
}

// MarshalJSON emits the open-document form.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(r.Document()))
}

func pairsToAny(pairs []Pair) []any {
	out := make([]any, len(pairs))
	for i, p := range pairs {
		out[i] = map[string]any{"in": p.In, "out": p.Out}
	}
	return out
}

func metaToAny(m Meta) map[string]any {
	out := map[string]any{"revision": m.Revision, "locked": m.Locked}
	if m.SubmittedAt != "" {
		out["submittedAt"] = m.SubmittedAt
	}
	if m.ReviewedAt != "" {
		out["reviewedAt"] = m.ReviewedAt
	}
	if m.ReviewerID != 0 {
		out["reviewerId"] = m.ReviewerID
	}
	if m.ReviewNote != "" {
		out["reviewNote"] = m.ReviewNote
	}
	return out
}

func historyToAny(entries []HistoryEntry) []any {
	out := make([]any, len(entries))
	for i, h := range entries {
		e := map[string]any{
			"id":     h.ID,
			"at":     h.At,
			"action": h.Action,
			"from":   string(h.From),
			"to":     string(h.To),
		}
		if h.By != 0 {
			e["by"] = h.By
		}
		if h.Reason != "" {
			e["reason"] = h.Reason
		}
		out[i] = e
	}
	return out
}
