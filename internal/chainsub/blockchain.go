package chainsub

import "context"

// Log is a raw contract log as delivered by the transport. Topics are
// 0x-prefixed hex strings; Data is the undecoded payload.
type Log struct {
	Address     string
	Topics      []string
	Data        []byte
	BlockNumber uint64
}

// LogFilter selects contract logs by emitting address and event signature
// topic (topic0).
type LogFilter struct {
	Address    string
	EventTopic string
}

// Subscription is a live transport-level subscription. Err yields at most
// one terminal error; Unsubscribe releases the subscription.
type Subscription interface {
	Err() <-chan error
	Unsubscribe()
}

// Transport is the raw connection to a chain node. Implementations do not
// remember filters across reconnects; the subscription manager replays
// them through its registry.
type Transport interface {
	// Connect establishes (or re-establishes) the underlying connection.
	// It must be safe to call repeatedly; an existing connection is
	// replaced.
	Connect(ctx context.Context) error

	// SubscribeLogs streams log batches matching filter into sink until
	// ctx is canceled or the connection drops. The returned Subscription
	// reports transport failure through Err.
	SubscribeLogs(ctx context.Context, filter LogFilter, sink chan<- []Log) (Subscription, error)
}
