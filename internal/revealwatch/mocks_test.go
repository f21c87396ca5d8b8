package revealwatch

import (
	"context"
	"testing"

	"github.com/herowatch/herowatch/internal/hero"

	"github.com/stretchr/testify/mock"
)

type TokenStorageMock struct {
	mock.Mock
}

func NewTokenStorageMock(t *testing.T) *TokenStorageMock {
	m := new(TokenStorageMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TokenStorageMock) Get(ctx context.Context, tokenID uint64) (hero.Record, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(hero.Record), args.Error(1)
}

func (m *TokenStorageMock) EnsureTracked(ctx context.Context, tokenID uint64) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *TokenStorageMock) MarkRevealed(ctx context.Context, tokenID uint64, image string, attrs []hero.TraitAttribute) (bool, error) {
	args := m.Called(ctx, tokenID, image, attrs)
	return args.Bool(0), args.Error(1)
}

func (m *TokenStorageMock) ListUnrevealed(ctx context.Context) ([]uint64, error) {
	args := m.Called(ctx)
	if ids := args.Get(0); ids != nil {
		return ids.([]uint64), args.Error(1)
	}
	return nil, args.Error(1)
}

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

type RevealNotifierMock struct {
	mock.Mock
}

func NewRevealNotifierMock(t *testing.T) *RevealNotifierMock {
	m := new(RevealNotifierMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RevealNotifierMock) AnnounceReveal(ctx context.Context, tokenID uint64, owner, image string) error {
	args := m.Called(ctx, tokenID, owner, image)
	return args.Error(0)
}
