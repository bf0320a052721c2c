package txSigner

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockIDigestSigner is a mock implementation of IDigestSigner
type MockIDigestSigner struct {
	mock.Mock
}

func (m *MockIDigestSigner) SignDigest(ctx context.Context, digest []byte) ([]byte, error) {
	ret := m.Called(ctx, digest)
	var sig []byte
	if v := ret.Get(0); v != nil {
		sig = v.([]byte)
	}
	return sig, ret.Error(1)
}

func (m *MockIDigestSigner) PublicKey(ctx context.Context) ([]byte, error) {
	ret := m.Called(ctx)
	var pub []byte
	if v := ret.Get(0); v != nil {
		pub = v.([]byte)
	}
	return pub, ret.Error(1)
}

// NewMockIDigestSigner creates a mock whose expectations are asserted at test cleanup
func NewMockIDigestSigner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIDigestSigner {
	m := &MockIDigestSigner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
