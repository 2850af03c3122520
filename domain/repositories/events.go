package repositories

import "github.com/shubhammaske12000-sudo/Translator/domain/entities"

// EventSink delivers controller state and results to the UI surface.
// Implementations must process notifications in arrival order.
type EventSink interface {
	StateChanged(state entities.SessionState)
	TranslationReady(result entities.TranslationResult)
	DubProgress(stage entities.DubStage)
	DubReady()
	// SessionError surfaces an ephemeral, user-visible error. Errors are
	// notifications on a separate channel, never a state.
	SessionError(err error)
}
