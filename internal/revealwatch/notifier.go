package revealwatch

import "context"

// RevealNotifier emits the externally visible reveal announcement. The
// side effect is not idempotent, so the engine calls it at most once per
// reveal transition. Failures are logged and dropped; retrying a post
// belongs to the notifier's own contract, not the engine's.
type RevealNotifier interface {
	AnnounceReveal(ctx context.Context, tokenID uint64, owner, image string) error
}
