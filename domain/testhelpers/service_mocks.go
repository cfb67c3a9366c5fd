package testhelpers

import (
	"context"

	"github.com/rich-automation/lotto-action/domain/entities"
	"github.com/rich-automation/lotto-action/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockAutomationSession is a mock implementation of AutomationSession
type MockAutomationSession struct {
	mock.Mock
}

func (m *MockAutomationSession) SignIn(ctx context.Context, id, secret string) error {
	args := m.Called(ctx, id, secret)
	return args.Error(0)
}

func (m *MockAutomationSession) Check(ctx context.Context, combination entities.Combination, round int) (entities.Rank, error) {
	args := m.Called(ctx, combination, round)
	return args.Get(0).(entities.Rank), args.Error(1)
}

func (m *MockAutomationSession) Purchase(ctx context.Context, amount int) ([]entities.Combination, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Combination), args.Error(1)
}

func (m *MockAutomationSession) CheckingLink(round int, numbers []entities.Combination) (string, error) {
	args := m.Called(round, numbers)
	return args.String(0), args.Error(1)
}

func (m *MockAutomationSession) Release() error {
	args := m.Called()
	return args.Error(0)
}

// MockFailureReporter is a mock implementation of FailureReporter
type MockFailureReporter struct {
	mock.Mock
}

func (m *MockFailureReporter) SetFailed(message string) {
	m.Called(message)
}

func (m *MockFailureReporter) WriteSummary(markdown string) error {
	args := m.Called(markdown)
	return args.Error(0)
}

// MockResultChecker is a mock implementation of ResultChecker
type MockResultChecker struct {
	mock.Mock
}

func (m *MockResultChecker) CheckAll(ctx context.Context) (*interfaces.CheckSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.CheckSummary), args.Error(1)
}

// MockPurchaseService is a mock implementation of PurchaseService
type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Purchase(ctx context.Context, amount int) (*entities.Ticket, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}
