package deathwatch

import (
	"context"
	"testing"

	"github.com/herowatch/herowatch/internal/hero"

	"github.com/stretchr/testify/mock"
)

type MetadataFetcherMock struct {
	mock.Mock
}

func NewMetadataFetcherMock(t *testing.T) *MetadataFetcherMock {
	m := new(MetadataFetcherMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MetadataFetcherMock) Fetch(ctx context.Context, tokenID uint64) (hero.Metadata, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(hero.Metadata), args.Error(1)
}

type DeathNotifierMock struct {
	mock.Mock
}

func NewDeathNotifierMock(t *testing.T) *DeathNotifierMock {
	m := new(DeathNotifierMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *DeathNotifierMock) AnnounceDeath(ctx context.Context, tokenID uint64, image string, level int) error {
	args := m.Called(ctx, tokenID, image, level)
	return args.Error(0)
}

type DeathRecorderMock struct {
	mock.Mock
}

func NewDeathRecorderMock(t *testing.T) *DeathRecorderMock {
	m := new(DeathRecorderMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *DeathRecorderMock) MarkDeath(ctx context.Context, tokenID uint64) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}
