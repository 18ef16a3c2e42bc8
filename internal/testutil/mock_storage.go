//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/card-smash/internal/server/storage"
)

// MockStore 大厅快照存储 mock
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveLobby(ctx context.Context, data *storage.LobbyData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockStore) DeleteLobby(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRecorder 战绩记录 mock
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordResult(ctx context.Context, winner string, players []string) error {
	args := m.Called(ctx, winner, players)
	return args.Error(0)
}
