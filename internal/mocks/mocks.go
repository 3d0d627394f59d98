// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"
	"net/http"
	"os"

	"github.com/stretchr/testify/mock"

	"bootbridge/internal/config"
	"bootbridge/internal/domain"
)

// MockHTTPAdapter is a mock implementation of domain.HTTPAdapter.
type MockHTTPAdapter struct {
	mock.Mock
}

// NewMockHTTPAdapter creates a mock and asserts its expectations on cleanup.
func NewMockHTTPAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockHTTPAdapter {
	m := &MockHTTPAdapter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockHTTPAdapter) Do(ctx context.Context, req domain.HTTPRequest) (*http.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

// MockStepExecutor is a mock implementation of domain.StepExecutor.
type MockStepExecutor struct {
	mock.Mock
}

// NewMockStepExecutor creates a mock and asserts its expectations on cleanup.
func NewMockStepExecutor(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStepExecutor {
	m := &MockStepExecutor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockStepExecutor) Execute(ctx context.Context, step domain.HandshakeStep) (domain.StepResult, error) {
	args := m.Called(ctx, step)
	result, _ := args.Get(0).(domain.StepResult)
	return result, args.Error(1)
}

// MockCredentialDeliverer is a mock implementation of domain.CredentialDeliverer.
type MockCredentialDeliverer struct {
	mock.Mock
}

// NewMockCredentialDeliverer creates a mock and asserts its expectations on cleanup.
func NewMockCredentialDeliverer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCredentialDeliverer {
	m := &MockCredentialDeliverer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCredentialDeliverer) Deliver(ctx context.Context, outcome *domain.RedemptionOutcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

// MockPipelineRunner is a mock implementation of domain.PipelineRunner.
type MockPipelineRunner struct {
	mock.Mock
}

// NewMockPipelineRunner creates a mock and asserts its expectations on cleanup.
func NewMockPipelineRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPipelineRunner {
	m := &MockPipelineRunner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPipelineRunner) Run(ctx context.Context) (*domain.RedemptionOutcome, error) {
	args := m.Called(ctx)
	outcome, _ := args.Get(0).(*domain.RedemptionOutcome)
	return outcome, args.Error(1)
}

// MockTaskSource is a mock implementation of domain.TaskSource.
type MockTaskSource struct {
	mock.Mock
}

// NewMockTaskSource creates a mock and asserts its expectations on cleanup.
func NewMockTaskSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTaskSource {
	m := &MockTaskSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTaskSource) CurrentTask(ctx context.Context) (domain.TaskToken, error) {
	args := m.Called(ctx)
	task, _ := args.Get(0).(domain.TaskToken)
	return task, args.Error(1)
}

// MockSecretReader is a mock implementation of domain.SecretReader.
type MockSecretReader struct {
	mock.Mock
}

// NewMockSecretReader creates a mock and asserts its expectations on cleanup.
func NewMockSecretReader(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSecretReader {
	m := &MockSecretReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSecretReader) ReadSecret(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockSecretReader) IsInteractive() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockSessionStore is a mock implementation of domain.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

// NewMockSessionStore creates a mock and asserts its expectations on cleanup.
func NewMockSessionStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionStore {
	m := &MockSessionStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionStore) SeedCookie(rawURL string, cookie *http.Cookie) error {
	args := m.Called(rawURL, cookie)
	return args.Error(0)
}

func (m *MockSessionStore) Cookies(rawURL string) []*http.Cookie {
	args := m.Called(rawURL)
	cookies, _ := args.Get(0).([]*http.Cookie)
	return cookies
}

// MockFileSystemAdapter is a mock implementation of domain.FileSystemAdapter.
type MockFileSystemAdapter struct {
	mock.Mock
}

// NewMockFileSystemAdapter creates a mock and asserts its expectations on cleanup.
func NewMockFileSystemAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFileSystemAdapter {
	m := &MockFileSystemAdapter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFileSystemAdapter) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockFileSystemAdapter) WriteFile(path string, data []byte, perm os.FileMode) error {
	args := m.Called(path, data, perm)
	return args.Error(0)
}

func (m *MockFileSystemAdapter) MkdirAll(path string, perm os.FileMode) error {
	args := m.Called(path, perm)
	return args.Error(0)
}

func (m *MockFileSystemAdapter) Stat(path string) (os.FileInfo, error) {
	args := m.Called(path)
	info, _ := args.Get(0).(os.FileInfo)
	return info, args.Error(1)
}

func (m *MockFileSystemAdapter) UserHomeDir() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// MockLifecycleGate is a mock implementation of domain.LifecycleGate.
type MockLifecycleGate struct {
	mock.Mock
}

// NewMockLifecycleGate creates a mock and asserts its expectations on cleanup.
func NewMockLifecycleGate(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLifecycleGate {
	m := &MockLifecycleGate{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLifecycleGate) Evaluate(ctx context.Context, location string) (bool, error) {
	args := m.Called(ctx, location)
	return args.Bool(0), args.Error(1)
}

// MockConfigRepository is a mock implementation of domain.ConfigRepository.
type MockConfigRepository struct {
	mock.Mock
}

// NewMockConfigRepository creates a mock and asserts its expectations on cleanup.
func NewMockConfigRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockConfigRepository {
	m := &MockConfigRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConfigRepository) Save(ctx context.Context, cfg config.Config, force bool) error {
	args := m.Called(ctx, cfg, force)
	return args.Error(0)
}

func (m *MockConfigRepository) Path() string {
	args := m.Called()
	return args.String(0)
}
