package notifier

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/notification"
)

type MockNotifierService struct {
	mock.Mock
}

func (m *MockNotifierService) Ingest(ctx context.Context, payloads []*notification.Payload) ([]*notification.RawNotification, error) {
	args := m.Called(ctx, payloads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.RawNotification), args.Error(1)
}

func (m *MockNotifierService) Process(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotifierService) ListUnprocessed(ctx context.Context) ([]*notification.RawNotification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.RawNotification), args.Error(1)
}

func TestEventHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("routes the key to the service", func(t *testing.T) {
		service := new(MockNotifierService)
		handler := NewEventHandler(logger, service)
		id := uuid.New()

		service.On("Process", ctx, id).Return(nil)

		err := handler.HandleMessage(ctx, []byte(id.String()), []byte(`{}`))
		assert.NoError(t, err)
		service.AssertExpectations(t)
	})

	t.Run("malformed key is acknowledged, not retried", func(t *testing.T) {
		service := new(MockNotifierService)
		handler := NewEventHandler(logger, service)

		err := handler.HandleMessage(ctx, []byte("not-a-uuid"), nil)
		assert.NoError(t, err)
		service.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	})

	t.Run("processing failure propagates for redelivery", func(t *testing.T) {
		service := new(MockNotifierService)
		handler := NewEventHandler(logger, service)
		id := uuid.New()
		procErr := errors.New("db down")

		service.On("Process", ctx, id).Return(procErr)

		err := handler.HandleMessage(ctx, []byte(id.String()), nil)
		assert.ErrorIs(t, err, procErr)
	})
}
