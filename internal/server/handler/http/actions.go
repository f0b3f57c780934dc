package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/models"
)

// knownActions are the workflow notification endpoints. The authoritative
// state transition happens client-side; these endpoints acknowledge the
// notification so reviewer-facing systems can hook in.
var knownActions = map[string]struct{}{
	"submit": {}, "retract": {}, "approve": {}, "reject": {}, "reopen": {}, "close": {},
}

// ActionHandler serves POST /{collection}/{id}/{action}.
type ActionHandler struct {
	Log *zap.Logger
}

// Notify acknowledges a workflow action notification.
func (h *ActionHandler) Notify(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if _, ok := knownActions[action]; !ok {
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}
	var body models.Document
	if r.Body != nil {
		// Payload is informational; a bad body does not fail the ack.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	h.Log.Info("workflow action notified",
		zap.String("collection", chi.URLParam(r, "collection")),
		zap.String("id", chi.URLParam(r, "id")),
		zap.String("action", action),
		zap.Any("payload", body),
	)
	w.WriteHeader(http.StatusNoContent)
}
