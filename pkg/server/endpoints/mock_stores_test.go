package endpoints

import (
	"github.com/stretchr/testify/mock"

	"github.com/mwhitlock-dev/credstore/pkg/server/store"
)

// MockAccountsStore implements store.AccountsStore for testing using testify/mock
type MockAccountsStore struct {
	mock.Mock
}

func NewMockAccountsStore() *MockAccountsStore {
	return &MockAccountsStore{}
}

func (m *MockAccountsStore) CreateAccount(email, passwordHash string) (*store.Account, error) {
	args := m.Called(email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Account), args.Error(1)
}

func (m *MockAccountsStore) FetchAccountByEmail(email string) (*store.Account, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Account), args.Error(1)
}

// MockCredentialsStore implements store.CredentialsStore for testing using testify/mock
type MockCredentialsStore struct {
	mock.Mock
}

func NewMockCredentialsStore() *MockCredentialsStore {
	return &MockCredentialsStore{}
}

func (m *MockCredentialsStore) ListCredentials(ownerID int64, search string) ([]store.Credential, error) {
	args := m.Called(ownerID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Credential), args.Error(1)
}

func (m *MockCredentialsStore) CreateCredential(ownerID int64, service, username, secret string) (*store.Credential, error) {
	args := m.Called(ownerID, service, username, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Credential), args.Error(1)
}

func (m *MockCredentialsStore) UpdateCredential(ownerID, credentialID int64, service, username, secret string) error {
	args := m.Called(ownerID, credentialID, service, username, secret)
	return args.Error(0)
}

func (m *MockCredentialsStore) DeleteCredential(ownerID, credentialID int64) error {
	args := m.Called(ownerID, credentialID)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity() error {
	args := m.Called()
	return args.Error(0)
}
