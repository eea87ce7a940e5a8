package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/llm"
)

// MockUserResolver mocks the UserResolver interface
type MockUserResolver struct {
	mock.Mock
}

func (m *MockUserResolver) Lookup(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

// MockHubStore mocks the HubStore interface
type MockHubStore struct {
	mock.Mock
}

func (m *MockHubStore) CreateHub(ctx context.Context, input domain.HubCreate) (domain.Hub, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.Hub), args.Error(1)
}

func (m *MockHubStore) AddMember(ctx context.Context, hubID uuid.UUID, input domain.MemberAdd) (domain.HubMember, error) {
	args := m.Called(ctx, hubID, input)
	return args.Get(0).(domain.HubMember), args.Error(1)
}

// MockAssistantStore mocks the AssistantStore interface
type MockAssistantStore struct {
	mock.Mock
}

func (m *MockAssistantStore) Hub(id uuid.UUID) (domain.Hub, bool) {
	args := m.Called(id)
	return args.Get(0).(domain.Hub), args.Bool(1)
}

func (m *MockAssistantStore) Meeting(id uuid.UUID) (domain.Meeting, bool) {
	args := m.Called(id)
	return args.Get(0).(domain.Meeting), args.Bool(1)
}

func (m *MockAssistantStore) AddChatbotEntry(ctx context.Context, input domain.ChatbotEntryCreate) (domain.ChatbotEntry, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.ChatbotEntry), args.Error(1)
}

func (m *MockAssistantStore) CompleteMeeting(ctx context.Context, meetingID uuid.UUID, summary string) (domain.Meeting, error) {
	args := m.Called(ctx, meetingID, summary)
	return args.Get(0).(domain.Meeting), args.Error(1)
}

// MockProviderSource mocks the ProviderSource interface
type MockProviderSource struct {
	mock.Mock
}

func (m *MockProviderSource) GetProvider(name string) (llm.Provider, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(llm.Provider), args.Error(1)
}

// MockLLMProvider mocks the llm.Provider interface
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	return "mock"
}

func (m *MockLLMProvider) AvailableModels() []string {
	return []string{"mock-model"}
}

func (m *MockLLMProvider) DefaultModel() string {
	return "mock-model"
}

func (m *MockLLMProvider) IsConfigured() bool {
	return true
}

func (m *MockLLMProvider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}
