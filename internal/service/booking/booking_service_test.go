package booking

import (
	"context"
	"testing"

	"github.com/buildcode/rideservice/internal/domain"
	"github.com/buildcode/rideservice/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRequestRepository struct {
	mock.Mock
}

func (m *MockBookingRequestRepository) Create(ctx context.Context, request *domain.BookingRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockBookingRequestRepository) GetByID(ctx context.Context, id string) (*domain.BookingRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}

func (m *MockBookingRequestRepository) UpdateStatusFrom(ctx context.Context, id string, expected, next domain.BookingStatus) (*domain.BookingRequest, error) {
	args := m.Called(ctx, id, expected, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, userID, title, body string) error {
	args := m.Called(ctx, userID, title, body)
	return args.Error(0)
}

func newTestService(repo *MockBookingRequestRepository, notifier *MockNotifier) *BookingService {
	return NewBookingService(repo, notifier, logging.NewLogger("error"))
}

func TestBookingService_Create_Success(t *testing.T) {
	mockRepo := &MockBookingRequestRepository{}
	mockNotifier := &MockNotifier{}
	service := newTestService(mockRepo, mockNotifier)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.BookingRequest")).Return(nil).Once()

	request, err := service.Create(ctx, CreateBookingInput{RideID: "r1", UserID: "u1"})

	assert.NoError(t, err)
	assert.NotNil(t, request)
	assert.NotEmpty(t, request.ID)
	assert.Equal(t, "r1", request.RideID)
	assert.Equal(t, "u1", request.UserID)

	mockRepo.AssertExpectations(t)
}

func TestBookingService_Create_ValidationErrors(t *testing.T) {
	service := newTestService(&MockBookingRequestRepository{}, &MockNotifier{})
	ctx := context.Background()

	testCases := []struct {
		name        string
		input       CreateBookingInput
		expectedErr string
	}{
		{
			name:        "missing ride id",
			input:       CreateBookingInput{UserID: "u1"},
			expectedErr: "ride id is required",
		},
		{
			name:        "missing user id",
			input:       CreateBookingInput{RideID: "r1"},
			expectedErr: "user id is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request, err := service.Create(ctx, tc.input)
			assert.Error(t, err)
			assert.Nil(t, request)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestBookingService_Get_NotFound(t *testing.T) {
	mockRepo := &MockBookingRequestRepository{}
	service := newTestService(mockRepo, &MockNotifier{})

	ctx := context.Background()
	mockRepo.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

	request, err := service.Get(ctx, "missing")

	assert.Nil(t, request)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestBookingService_Accept_Success(t *testing.T) {
	mockRepo := &MockBookingRequestRepository{}
	mockNotifier := &MockNotifier{}
	service := newTestService(mockRepo, mockNotifier)

	ctx := context.Background()
	pending := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusPending}
	confirmed := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusConfirmed}

	mockRepo.On("GetByID", ctx, "br1").Return(pending, nil).Once()
	mockRepo.On("UpdateStatusFrom", ctx, "br1", domain.BookingStatusPending, domain.BookingStatusConfirmed).Return(confirmed, nil).Once()
	mockNotifier.On("Send", ctx, "u1", "Ride Accepted", "Your ride has been accepted!").Return(nil).Once()

	ok, err := service.Accept(ctx, "br1")

	assert.NoError(t, err)
	assert.True(t, ok)
	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestBookingService_Accept_AlreadyTerminal(t *testing.T) {
	// Both terminal states must block re-transition, in either direction.
	for _, status := range []domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			mockRepo := &MockBookingRequestRepository{}
			mockNotifier := &MockNotifier{}
			service := newTestService(mockRepo, mockNotifier)

			ctx := context.Background()
			terminal := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: status}
			mockRepo.On("GetByID", ctx, "br1").Return(terminal, nil).Once()

			ok, err := service.Accept(ctx, "br1")

			assert.False(t, ok)
			assert.ErrorIs(t, err, domain.ErrConflict)
			mockRepo.AssertNotCalled(t, "UpdateStatusFrom")
			mockNotifier.AssertNotCalled(t, "Send")
		})
	}
}

func TestBookingService_Reject_AlreadyTerminal(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			mockRepo := &MockBookingRequestRepository{}
			mockNotifier := &MockNotifier{}
			service := newTestService(mockRepo, mockNotifier)

			ctx := context.Background()
			terminal := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: status}
			mockRepo.On("GetByID", ctx, "br1").Return(terminal, nil).Once()

			ok, err := service.Reject(ctx, "br1")

			assert.False(t, ok)
			assert.ErrorIs(t, err, domain.ErrConflict)
			mockRepo.AssertNotCalled(t, "UpdateStatusFrom")
		})
	}
}

func TestBookingService_Reject_Success(t *testing.T) {
	mockRepo := &MockBookingRequestRepository{}
	mockNotifier := &MockNotifier{}
	service := newTestService(mockRepo, mockNotifier)

	ctx := context.Background()
	pending := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusPending}
	rejected := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusRejected}

	mockRepo.On("GetByID", ctx, "br1").Return(pending, nil).Once()
	mockRepo.On("UpdateStatusFrom", ctx, "br1", domain.BookingStatusPending, domain.BookingStatusRejected).Return(rejected, nil).Once()
	mockNotifier.On("Send", ctx, "u1", "Ride Rejected", "Your ride has been rejected.").Return(nil).Once()

	ok, err := service.Reject(ctx, "br1")

	assert.NoError(t, err)
	assert.True(t, ok)
	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestBookingService_Accept_LostRace(t *testing.T) {
	// The request reads as PENDING but a concurrent reject lands first; the
	// conditional update reports the conflict instead of overwriting.
	mockRepo := &MockBookingRequestRepository{}
	mockNotifier := &MockNotifier{}
	service := newTestService(mockRepo, mockNotifier)

	ctx := context.Background()
	pending := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusPending}

	mockRepo.On("GetByID", ctx, "br1").Return(pending, nil).Once()
	mockRepo.On("UpdateStatusFrom", ctx, "br1", domain.BookingStatusPending, domain.BookingStatusConfirmed).Return(nil, domain.ErrConflict).Once()

	ok, err := service.Accept(ctx, "br1")

	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrConflict)
	mockNotifier.AssertNotCalled(t, "Send")
	mockRepo.AssertExpectations(t)
}

func TestBookingService_Cancel_NoNotification(t *testing.T) {
	mockRepo := &MockBookingRequestRepository{}
	mockNotifier := &MockNotifier{}
	service := newTestService(mockRepo, mockNotifier)

	ctx := context.Background()
	pending := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusPending}
	rejected := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusRejected}

	mockRepo.On("GetByID", ctx, "br1").Return(pending, nil).Once()
	mockRepo.On("UpdateStatusFrom", ctx, "br1", domain.BookingStatusPending, domain.BookingStatusRejected).Return(rejected, nil).Once()

	ok, err := service.Cancel(ctx, "br1")

	assert.NoError(t, err)
	assert.True(t, ok)
	mockNotifier.AssertNotCalled(t, "Send")
	mockRepo.AssertExpectations(t)
}

func TestBookingService_NotificationFailureDoesNotFailAccept(t *testing.T) {
	mockRepo := &MockBookingRequestRepository{}
	mockNotifier := &MockNotifier{}
	service := newTestService(mockRepo, mockNotifier)

	ctx := context.Background()
	pending := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusPending}
	confirmed := &domain.BookingRequest{ID: "br1", RideID: "r1", UserID: "u1", Status: domain.BookingStatusConfirmed}

	mockRepo.On("GetByID", ctx, "br1").Return(pending, nil).Once()
	mockRepo.On("UpdateStatusFrom", ctx, "br1", domain.BookingStatusPending, domain.BookingStatusConfirmed).Return(confirmed, nil).Once()
	mockNotifier.On("Send", ctx, "u1", "Ride Accepted", "Your ride has been accepted!").Return(assert.AnError).Once()

	ok, err := service.Accept(ctx, "br1")

	assert.NoError(t, err)
	assert.True(t, ok)
	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}
