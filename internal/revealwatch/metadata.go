package revealwatch

import (
	"context"

	"github.com/herowatch/herowatch/internal/hero"
)

// MetadataFetcher retrieves a token's descriptive metadata from the
// external source. Network failures, non-2xx responses and malformed
// payloads all surface as errors and are retried by the engine; a
// successful fetch that still carries the placeholder image is not an
// error but a legitimate "not yet" answer.
type MetadataFetcher interface {
	Fetch(ctx context.Context, tokenID uint64) (hero.Metadata, error)
}
