package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Find(ctx context.Context, userID string) (any, error) {
	args := m.Called(ctx, userID)
	return args.Get(0), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) FindForAuthentication(ctx context.Context, login string) (any, error) {
	args := m.Called(ctx, login)
	return args.Get(0), args.Error(1)
}
