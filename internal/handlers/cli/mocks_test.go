package cli

import (
	"context"
	"testing"

	"github.com/herowatch/herowatch/internal/revealwatch"

	"github.com/stretchr/testify/mock"
)

type EventProcServiceMock struct {
	mock.Mock
}

func NewEventProcServiceMock(t *testing.T) *EventProcServiceMock {
	m := new(EventProcServiceMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventProcServiceMock) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *EventProcServiceMock) Close() {
	m.Called()
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
