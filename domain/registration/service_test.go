package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akeren/go-registration-form/internal/log"
	apperrors "github.com/akeren/go-registration-form/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, records RecordRepository, clock *testClock, ttl time.Duration) (*registrationService, *Metrics) {
	t.Helper()

	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewRegistrationService(log.NewDiscardLogger(), records, &Options{
		MinAge:     18,
		SessionTTL: ttl,
		Clock:      clock.Now,
	}, metrics)

	return svc.(*registrationService), metrics
}

func changeAll(t *testing.T, svc RegistrationService, id string, record Record) {
	t.Helper()

	for _, f := range Fields {
		_, err := svc.ChangeField(context.Background(), id, &ChangeFieldRequest{Field: string(f), Value: record.Value(f)})
		require.NoError(t, err)
	}
}

func TestRegistrationService_SessionLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := NewMockRecordRepository(ctrl)
	clock := &testClock{now: fixedNow}
	svc, metrics := newTestService(t, records, clock, time.Minute)
	ctx := context.Background()

	created, err := svc.CreateForm(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CanSubmit)
	assert.Nil(t, created.Notification)
	assert.NotNil(t, created.Errors)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.activeForms))

	t.Run("field change", func(t *testing.T) {
		view, err := svc.ChangeField(ctx, created.ID, &ChangeFieldRequest{Field: "nom", Value: "Dupont"})
		require.NoError(t, err)
		assert.Equal(t, "Dupont", view.Fields.LastName)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := svc.ChangeField(ctx, created.ID, &ChangeFieldRequest{Field: "age", Value: "42"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidationFailed))
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("nil request", func(t *testing.T) {
		_, err := svc.ChangeField(ctx, created.ID, nil)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
	})

	t.Run("get", func(t *testing.T) {
		view, err := svc.GetForm(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dupont", view.Fields.LastName)
	})

	t.Run("discard", func(t *testing.T) {
		require.NoError(t, svc.DiscardForm(ctx, created.ID))

		_, err := svc.GetForm(ctx, created.ID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		assert.True(t, apperrors.IsType(svc.DiscardForm(ctx, created.ID), apperrors.ErrorTypeNotFound))
		assert.Equal(t, float64(0), testutil.ToFloat64(metrics.activeForms))
	})
}

func TestRegistrationService_SubmitForm(t *testing.T) {
	ctx := context.Background()

	t.Run("valid form is stored and reset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		records := NewMockRecordRepository(ctrl)
		svc, metrics := newTestService(t, records, &testClock{now: fixedNow}, time.Minute)

		records.EXPECT().Save(gomock.Any(), validRecord()).Return(nil)

		created, err := svc.CreateForm(ctx)
		require.NoError(t, err)
		changeAll(t, svc, created.ID, validRecord())

		view, err := svc.SubmitForm(ctx, created.ID)
		require.NoError(t, err)

		assert.False(t, view.Rejected())
		assert.Equal(t, MsgRegistrationSaved, view.Notification.Message)
		assert.Equal(t, Record{}, view.Fields)
		assert.Empty(t, view.Errors)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.submissions.WithLabelValues(outcomeAccepted)))
	})

	t.Run("invalid form keeps values", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		records := NewMockRecordRepository(ctrl)
		svc, metrics := newTestService(t, records, &testClock{now: fixedNow}, time.Minute)

		created, err := svc.CreateForm(ctx)
		require.NoError(t, err)
		changeAll(t, svc, created.ID, invalidRecord())

		view, err := svc.SubmitForm(ctx, created.ID)
		require.NoError(t, err)

		assert.True(t, view.Rejected())
		assert.Len(t, view.Errors, 6)
		assert.Equal(t, invalidRecord(), view.Fields)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.submissions.WithLabelValues(outcomeRejected)))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.fieldErrors.WithLabelValues("ville")))
	})

	t.Run("store failure leaves the session untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		records := NewMockRecordRepository(ctrl)
		svc, metrics := newTestService(t, records, &testClock{now: fixedNow}, time.Minute)

		records.EXPECT().Save(gomock.Any(), gomock.Any()).
			Return(apperrors.NewDatabaseError("failed to save registration record", errors.New("boom")))

		created, err := svc.CreateForm(ctx)
		require.NoError(t, err)
		changeAll(t, svc, created.ID, validRecord())

		_, err = svc.SubmitForm(ctx, created.ID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabaseError))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.submissions.WithLabelValues(outcomeError)))

		view, err := svc.GetForm(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, validRecord(), view.Fields)
		assert.Nil(t, view.Notification)
	})

	t.Run("unknown session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _ := newTestService(t, NewMockRecordRepository(ctrl), &testClock{now: fixedNow}, time.Minute)

		_, err := svc.SubmitForm(ctx, "4b1b8d0e-3a0f-4f7e-9c55-0d1f0b6a7c11")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestRegistrationService_ExpiredReadUpdatesActiveForms(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := &testClock{now: fixedNow}
	svc, metrics := newTestService(t, NewMockRecordRepository(ctrl), clock, time.Minute)
	ctx := context.Background()

	created, err := svc.CreateForm(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.activeForms))

	clock.now = clock.now.Add(2 * time.Minute)

	_, err = svc.SubmitForm(ctx, created.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.Equal(t, 0, svc.sessions.len())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.activeForms))
}

func TestRegistrationService_SessionsExpire(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := &testClock{now: fixedNow}
	svc, _ := newTestService(t, NewMockRecordRepository(ctrl), clock, time.Minute)
	ctx := context.Background()

	stale, err := svc.CreateForm(ctx)
	require.NoError(t, err)

	clock.now = clock.now.Add(30 * time.Second)
	_, err = svc.GetForm(ctx, stale.ID)
	require.NoError(t, err, "reads extend the lifetime")

	clock.now = clock.now.Add(90 * time.Second)
	_, err = svc.CreateForm(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.sessions.len(), "creating a form prunes expired ones")

	_, err = svc.GetForm(ctx, stale.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		records := NewMockRecordRepository(ctrl)
		svc, _ := newTestService(t, records, &testClock{now: fixedNow}, time.Minute)

		records.EXPECT().Save(gomock.Any(), validRecord()).Return(nil)

		r := validRecord()
		view, err := svc.Register(ctx, &RegisterRequest{
			LastName: r.LastName, FirstName: r.FirstName, Email: r.Email,
			BirthDate: r.BirthDate, City: r.City, PostalCode: r.PostalCode,
		})
		require.NoError(t, err)
		assert.False(t, view.Rejected())
		assert.Empty(t, view.ID)
		assert.Equal(t, 0, svc.sessions.len(), "one-shot submits open no session")
	})

	t.Run("rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _ := newTestService(t, NewMockRecordRepository(ctrl), &testClock{now: fixedNow}, time.Minute)

		view, err := svc.Register(ctx, &RegisterRequest{LastName: "Dupont"})
		require.NoError(t, err)
		assert.True(t, view.Rejected())
		assert.Len(t, view.Errors, 5)
		assert.NotContains(t, view.Errors, FieldLastName)
	})

	t.Run("nil request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _ := newTestService(t, NewMockRecordRepository(ctrl), &testClock{now: fixedNow}, time.Minute)

		_, err := svc.Register(ctx, nil)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
	})
}

func TestRegistrationService_GetRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := NewMockRecordRepository(ctrl)
	svc, _ := newTestService(t, records, &testClock{now: fixedNow}, time.Minute)

	stored := validRecord()
	records.EXPECT().Find(gomock.Any()).Return(&stored, nil)
	records.EXPECT().Find(gomock.Any()).Return(nil, apperrors.NewNotFoundError("no registration record found", nil))

	record, err := svc.GetRecord(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stored, *record)

	_, err = svc.GetRecord(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
