package engine

import "github.com/nvandessel/crosswalk/internal/models"

// negotiateSwap asks the occupant of target to trade cells with initiator.
// The responder decides through its own policy. Obstacles are never moved,
// whatever their policy answers.
func (w *World) negotiateSwap(initiator Agent, target models.Point) bool {
	responder, ok := w.AgentAt(target)
	if !ok {
		return false
	}

	from := initiator.Cell()
	accepted := responder.RespondToSwap(w, from) && responder.Class() != models.ClassObstacle
	if accepted {
		if err := w.swapOccupants(initiator, responder); err != nil {
			w.logger.Error("swap failed", "initiator", Label(initiator), "responder", Label(responder), "error", err)
			accepted = false
		} else {
			responder.core().record(target, from)
		}
	}

	if w.report != nil {
		w.report.SwapsRequested++
		if accepted {
			w.report.SwapsAccepted++
		}
	}

	w.trace("swap requested", initiator,
		"responder", Label(responder),
		"target", target.String(),
		"accepted", accepted)
	w.decisions.Log("swap", map[string]any{
		"turn":      w.turn,
		"initiator": Label(initiator),
		"responder": Label(responder),
		"from":      from.String(),
		"to":        target.String(),
		"accepted":  accepted,
	})
	return accepted
}
