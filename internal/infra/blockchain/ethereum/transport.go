// Package ethereum implements the chainsub transport and event decoding
// for Ethereum-compatible nodes, using go-ethereum's websocket client and
// log subscriptions.
package ethereum

import (
	"context"
	"errors"
	"sync"

	"github.com/herowatch/herowatch/internal/chainsub"
	"github.com/herowatch/herowatch/internal/pkg/x/chanx"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrNotConnected is returned by SubscribeLogs before the first Connect.
var ErrNotConnected = errors.New("ethereum transport not connected")

const rawLogBufferSize = 32

type transport struct {
	mu   sync.Mutex
	url  string
	conn *ethclient.Client
}

var _ chainsub.Transport = (*transport)(nil)

// NewTransport builds a transport that dials url (ws:// or wss://; log
// subscriptions require a websocket endpoint).
func NewTransport(url string) *transport {
	return &transport{url: url}
}

// Connect dials the node, replacing and closing any previous connection.
func (t *transport) Connect(ctx context.Context) error {
	conn, err := ethclient.DialContext(ctx, t.url)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn = conn
	t.mu.Unlock()

	return nil
}

// SubscribeLogs opens a filtered log subscription on the current
// connection and forwards each log into sink as a single-element batch.
func (t *transport) SubscribeLogs(ctx context.Context, filter chainsub.LogFilter, sink chan<- []chainsub.Log) (chainsub.Subscription, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return nil, ErrNotConnected
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{common.HexToAddress(filter.Address)},
		Topics:    [][]common.Hash{{common.HexToHash(filter.EventTopic)}},
	}

	raw := make(chan gethtypes.Log, rawLogBufferSize)
	sub, err := conn.SubscribeFilterLogs(ctx, query, raw)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			l, ok := chanx.Recv(ctx, raw)
			if !ok {
				return
			}
			if !chanx.Send(ctx, sink, []chainsub.Log{convertLog(l)}) {
				return
			}
		}
	}()

	return sub, nil
}

func convertLog(l gethtypes.Log) chainsub.Log {
	topics := make([]string, 0, len(l.Topics))
	for _, topic := range l.Topics {
		topics = append(topics, topic.Hex())
	}

	return chainsub.Log{
		Address:     l.Address.Hex(),
		Topics:      topics,
		Data:        l.Data,
		BlockNumber: l.BlockNumber,
	}
}
