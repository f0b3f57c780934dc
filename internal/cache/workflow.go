package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/models"
)

// ErrInvalidTransition reports a workflow action applied from a state it is
// not allowed in.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// Workflow action names, also the per-action notification endpoints.
const (
	ActionDraft   = "draft"
	ActionReady   = "ready"
	ActionSubmit  = "submit"
	ActionRetract = "retract"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionReopen  = "reopen"
	ActionClose   = "close"
)

// Status returns the cached workflow state of a day (draft when unseeded).
func (c *Cache) Status(day string) models.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.statusByDate[day]; ok {
		return s
	}
	return models.StatusRascunho
}

// Meta returns the cached workflow metadata of a day.
func (c *Cache) Meta(day string) models.Meta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metaByDate[day]
}

// History returns a copy of the audit trail of a day.
func (c *Cache) History(day string) []models.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.HistoryEntry(nil), c.historyByDate[day]...)
}

// MarkDraft puts a day back into the draft state. Allowed from any state.
func (c *Cache) MarkDraft(ctx context.Context, day string) error {
	return c.transition(ctx, day, ActionDraft, models.StatusRascunho, nil, 0, "", nil)
}

// MarkReady marks a day as ready for submission. Allowed from any state.
func (c *Cache) MarkReady(ctx context.Context, day string) error {
	return c.transition(ctx, day, ActionReady, models.StatusPronto, nil, 0, "", nil)
}

// SubmitDay submits a day for review, locking user edits. Expected from
// pronto; a direct submit from rascunho is also accepted.
func (c *Cache) SubmitDay(ctx context.Context, day string, by int) error {
	allowed := []models.Status{models.StatusRascunho, models.StatusPronto}
	return c.transition(ctx, day, ActionSubmit, models.StatusEnviado, allowed, by, "",
		func(m *models.Meta) {
			m.SubmittedAt = c.timestamp()
			m.Locked = true
		})
}

// RetractDay takes a submitted day back, unlocking user edits.
func (c *Cache) RetractDay(ctx context.Context, day string, by int) error {
	allowed := []models.Status{models.StatusEnviado}
	return c.transition(ctx, day, ActionRetract, models.StatusPronto, allowed, by, "",
		func(m *models.Meta) {
			m.Locked = false
		})
}

// ApproveDay approves a submitted day, keeping it locked.
func (c *Cache) ApproveDay(ctx context.Context, day string, reviewerID int, note string) error {
	allowed := []models.Status{models.StatusEnviado}
	return c.transition(ctx, day, ActionApprove, models.StatusAprovado, allowed, reviewerID, note,
		func(m *models.Meta) {
			m.ReviewedAt = c.timestamp()
			m.ReviewerID = reviewerID
			m.ReviewNote = note
			m.Locked = true
		})
}

// RejectDay rejects a submitted day, unlocking it for fixes.
func (c *Cache) RejectDay(ctx context.Context, day string, reviewerID int, note string) error {
	allowed := []models.Status{models.StatusEnviado}
	return c.transition(ctx, day, ActionReject, models.StatusReprovado, allowed, reviewerID, note,
		func(m *models.Meta) {
			m.ReviewedAt = c.timestamp()
			m.ReviewerID = reviewerID
			m.ReviewNote = note
			m.Locked = false
		})
}

// ReopenDay reopens an approved, rejected or closed day back to draft,
// bumping the revision.
func (c *Cache) ReopenDay(ctx context.Context, day string, reviewerID int, reason string) error {
	allowed := []models.Status{models.StatusAprovado, models.StatusReprovado, models.StatusFechado}
	return c.transition(ctx, day, ActionReopen, models.StatusRascunho, allowed, reviewerID, reason,
		func(m *models.Meta) {
			m.Revision++
			m.Locked = false
		})
}

// CloseDay closes an approved day. Terminal unless reopened.
func (c *Cache) CloseDay(ctx context.Context, day string, reviewerID int) error {
	allowed := []models.Status{models.StatusAprovado}
	return c.transition(ctx, day, ActionClose, models.StatusFechado, allowed, reviewerID, "",
		func(m *models.Meta) {
			m.Locked = true
		})
}

// transition applies one workflow action: the local state change plus its
// audit entry are authoritative; the remote notification is best-effort and
// never gates them; the generic persist then flushes status, meta and history
// through the write queue.
func (c *Cache) transition(
	ctx context.Context,
	day, action string,
	to models.Status,
	allowed []models.Status,
	by int,
	reason string,
	mutate func(*models.Meta),
) error {
	if err := c.EnsureDayLoaded(ctx, day); err != nil {
		return err
	}

	c.mu.Lock()
	from := c.statusByDate[day]
	if from == "" {
		from = models.StatusRascunho
	}
	if allowed != nil && !statusIn(from, allowed) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s from %q", ErrInvalidTransition, action, from)
	}
	meta := c.metaByDate[day]
	if mutate != nil {
		mutate(&meta)
	}
	c.statusByDate[day] = to
	c.metaByDate[day] = meta
	c.historyByDate[day] = append(c.historyByDate[day], models.HistoryEntry{
		ID:     uuid.NewString(),
		At:     c.timestamp(),
		Action: action,
		From:   from,
		To:     to,
		By:     by,
		Reason: reason,
	})
	recordID := c.idByDate[day]
	c.mu.Unlock()

	// Only review-facing actions have a dedicated endpoint; draft/ready are
	// purely local states.
	if action != ActionDraft && action != ActionReady {
		c.notify(ctx, recordID, day, action, by, reason)
	}

	return c.Persist(ctx, day)
}

// notify posts the action to the backend's dedicated endpoint. Failures are
// logged and swallowed; a day that was never persisted has no id to address,
// so its notification is skipped and the follow-up persist carries the state.
func (c *Cache) notify(ctx context.Context, recordID, day, action string, by int, reason string) {
	if recordID == "" {
		c.log.Debug("skipping workflow notification for unpersisted day",
			zap.String("day", day), zap.String("action", action))
		return
	}
	body := models.Document{"by": by}
	if reason != "" {
		body["reason"] = reason
	}
	if err := c.transport.Notify(ctx, Collection, recordID, action, body); err != nil {
		c.log.Warn("workflow notification failed",
			zap.String("day", day),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func statusIn(s models.Status, list []models.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
