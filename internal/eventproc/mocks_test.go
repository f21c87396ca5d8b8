package eventproc

import (
	"context"
	"testing"

	"github.com/herowatch/herowatch/internal/chainsub"
	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/revealwatch"

	"github.com/stretchr/testify/mock"
)

type ChainSubServiceMock struct {
	mock.Mock
}

func NewChainSubServiceMock(t *testing.T) *ChainSubServiceMock {
	m := new(ChainSubServiceMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ChainSubServiceMock) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *ChainSubServiceMock) Subscribe(filter chainsub.LogFilter, onLogs chainsub.LogsHandler, onErr chainsub.ErrorHandler) (chainsub.CancelFunc, error) {
	args := m.Called(filter, onLogs, onErr)
	if cancel := args.Get(0); cancel != nil {
		return cancel.(chainsub.CancelFunc), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChainSubServiceMock) OnReconnect(name string, hook chainsub.ReconnectHook) {
	m.Called(name, hook)
}

func (m *ChainSubServiceMock) Close() {
	m.Called()
}

type EventDecoderMock struct {
	mock.Mock
}

func NewEventDecoderMock(t *testing.T) *EventDecoderMock {
	m := new(EventDecoderMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventDecoderMock) StakedFilter() chainsub.LogFilter {
	args := m.Called()
	return args.Get(0).(chainsub.LogFilter)
}

func (m *EventDecoderMock) DeathFilter() chainsub.LogFilter {
	args := m.Called()
	return args.Get(0).(chainsub.LogFilter)
}

func (m *EventDecoderMock) DecodeStaked(l chainsub.Log) (revealwatch.StakedEvent, error) {
	args := m.Called(l)
	return args.Get(0).(revealwatch.StakedEvent), args.Error(1)
}

func (m *EventDecoderMock) DecodeDeath(l chainsub.Log) (deathwatch.DeathEvent, error) {
	args := m.Called(l)
	return args.Get(0).(deathwatch.DeathEvent), args.Error(1)
}

type RevealServiceMock struct {
	mock.Mock
}

func NewRevealServiceMock(t *testing.T) *RevealServiceMock {
	m := new(RevealServiceMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RevealServiceMock) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *RevealServiceMock) Close() {
	m.Called()
}

func (m *RevealServiceMock) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *RevealServiceMock) HandleStaked(ctx context.Context, event revealwatch.StakedEvent) {
	m.Called(ctx, event)
}

func (m *RevealServiceMock) ReconcileAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *RevealServiceMock) Watching(tokenID uint64) bool {
	args := m.Called(tokenID)
	return args.Bool(0)
}

type DeathServiceMock struct {
	mock.Mock
}

func NewDeathServiceMock(t *testing.T) *DeathServiceMock {
	m := new(DeathServiceMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *DeathServiceMock) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *DeathServiceMock) Close() {
	m.Called()
}

func (m *DeathServiceMock) HandleDeath(ctx context.Context, event deathwatch.DeathEvent) {
	m.Called(ctx, event)
}
