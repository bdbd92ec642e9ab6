package queries_test

import (
	"context"
	"testing"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/tracking"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTrackingStore struct{ mock.Mock }

func (m *MockTrackingStore) Load(ctx context.Context, key string) (tracking.Document, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(tracking.Document), args.Error(1)
}

func (m *MockTrackingStore) Save(ctx context.Context, doc tracking.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockTrackingStore) Read(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func TestGetTrackingDocumentQueryHandler_ReturnsStoredBytes(t *testing.T) {
	ctx := t.Context()
	store := new(MockTrackingStore)
	body := []byte(`{"orderId":"42","status":4}`)
	store.On("Read", mock.Anything, "42").Return(body, nil).Once()

	q, err := queries.NewGetTrackingDocumentQuery(" 42 ")
	require.NoError(t, err)

	got, err := queries.NewGetTrackingDocumentQueryHandler(store).Handle(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	store.AssertExpectations(t)
}

func TestGetTrackingDocumentQueryHandler_NotFound(t *testing.T) {
	ctx := t.Context()
	store := new(MockTrackingStore)
	store.On("Read", mock.Anything, "job_1").Return(nil, errs.NewObjectNotFoundError("tracking document", "job_1")).Once()

	q, _ := queries.NewGetTrackingDocumentQuery("job_1")
	_, err := queries.NewGetTrackingDocumentQueryHandler(store).Handle(ctx, q)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestNewGetTrackingDocumentQuery_RejectsUnsafeKey(t *testing.T) {
	_, err := queries.NewGetTrackingDocumentQuery("../../etc/passwd")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	var q queries.GetTrackingDocumentQuery
	require.ErrorIs(t, q.Validate(), queries.ErrGetTrackingDocumentQueryIsNotConstructed)
}
