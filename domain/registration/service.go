package registration

import (
	"context"
	"sync"
	"time"

	"github.com/akeren/go-registration-form/internal/log"
	"github.com/akeren/go-registration-form/pkg/constants"
	apperrors "github.com/akeren/go-registration-form/pkg/errors"
	"github.com/akeren/go-registration-form/pkg/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/akeren/go-registration-form/domain/registration")

type RegistrationService interface {
	// CreateForm opens an empty form session.
	CreateForm(ctx context.Context) (*FormResponse, error)

	// GetForm returns the current view of a form session.
	GetForm(ctx context.Context, id string) (*FormResponse, error)

	// ChangeField applies a field edit to a form session.
	ChangeField(ctx context.Context, id string, req *ChangeFieldRequest) (*FormResponse, error)

	// SubmitForm validates a form session and stores the record when it passes.
	SubmitForm(ctx context.Context, id string) (*FormResponse, error)

	// DiscardForm closes a form session.
	DiscardForm(ctx context.Context, id string) error

	// Register fills a fresh form with every field and submits it.
	Register(ctx context.Context, req *RegisterRequest) (*FormResponse, error)

	// GetRecord returns the stored registration.
	GetRecord(ctx context.Context) (*Record, error)
}

type Options struct {
	MinAge     int
	SessionTTL time.Duration
	Clock      validation.Clock
}

func (o *Options) withDefaults() Options {
	opts := Options{}
	if o != nil {
		opts = *o
	}
	if opts.MinAge <= 0 {
		opts.MinAge = constants.DefaultMinimumAge
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = constants.DefaultFormSessionTTL()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return opts
}

type registrationService struct {
	// mu serializes every form transition, including the store write.
	mu sync.Mutex

	logger   *log.Logger
	form     *Form
	records  RecordRepository
	sessions *sessionStore
	metrics  *Metrics
	now      validation.Clock
	newID    func() string
}

func NewRegistrationService(logger *log.Logger, records RecordRepository, options *Options, metrics *Metrics) RegistrationService {
	opts := options.withDefaults()
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &registrationService{
		logger:   logger,
		form:     NewForm(validation.MustNew(opts.Clock), DefaultRules(opts.MinAge), records),
		records:  records,
		sessions: newSessionStore(opts.SessionTTL),
		metrics:  metrics,
		now:      opts.Clock,
		newID:    func() string { return uuid.New().String() },
	}
}

func formNotFound() error {
	return apperrors.NewNotFoundError("registration form not found or expired", nil)
}

// lookup returns a live session. Callers hold mu.
func (s *registrationService) lookup(id string) (*formSession, bool) {
	session, ok := s.sessions.get(id, s.now())
	if !ok {
		// get drops an expired session.
		s.metrics.setActiveForms(s.sessions.len())
	}
	return session, ok
}

func (s *registrationService) CreateForm(ctx context.Context) (*FormResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions.create(s.newID(), s.now())
	s.metrics.setActiveForms(s.sessions.len())

	logger.Info("Registration form opened", "form_id", session.id)

	response := toSessionResponse(session)
	return &response, nil
}

func (s *registrationService) GetForm(ctx context.Context, id string) (*FormResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.lookup(id)
	if !ok {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Registration form not found", "form_id", id)
		return nil, formNotFound()
	}

	response := toSessionResponse(session)
	return &response, nil
}

func (s *registrationService) ChangeField(ctx context.Context, id string, req *ChangeFieldRequest) (*FormResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("ChangeField received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	field, err := ParseField(req.Field)
	if err != nil {
		logger.Warn("ChangeField received unknown field", "field", req.Field)
		return nil, apperrors.NewValidationFailedError("unknown form field", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.lookup(id)
	if !ok {
		logger.Warn("Registration form not found", "form_id", id)
		return nil, formNotFound()
	}

	next, err := OnFieldChange(session.state, field, req.Value)
	if err != nil {
		return nil, apperrors.NewValidationFailedError("unknown form field", err)
	}
	session.state = next

	logger.Debug("Registration field changed", "form_id", id, "field", field)

	response := toSessionResponse(session)
	return &response, nil
}

func (s *registrationService) SubmitForm(ctx context.Context, id string) (*FormResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.lookup(id)
	if !ok {
		logger.Warn("Registration form not found", "form_id", id)
		return nil, formNotFound()
	}

	next, err := s.submit(ctx, session.state)
	if err != nil {
		return nil, err
	}
	session.state = next

	response := toSessionResponse(session)
	return &response, nil
}

func (s *registrationService) DiscardForm(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessions.delete(id) {
		return formNotFound()
	}
	s.metrics.setActiveForms(s.sessions.len())

	log.GetLoggerInstanceFromContext(ctx, s.logger).Info("Registration form discarded", "form_id", id)
	return nil
}

func (s *registrationService) Register(ctx context.Context, req *RegisterRequest) (*FormResponse, error) {
	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	state := NewFormState()
	values := req.values()
	for _, field := range Fields {
		next, err := OnFieldChange(state, field, values[field])
		if err != nil {
			return nil, apperrors.NewInternalServerError("failed to fill registration form", err)
		}
		state = next
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.submit(ctx, state)
	if err != nil {
		return nil, err
	}

	response := ToFormResponse(next)
	return &response, nil
}

func (s *registrationService) GetRecord(ctx context.Context) (*Record, error) {
	record, err := s.records.Find(ctx)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			log.GetLoggerInstanceFromContext(ctx, s.logger).Error("Failed to load registration record", "error", err)
		}
		return nil, err
	}
	return record, nil
}

// submit runs the submit transition. Callers hold mu.
func (s *registrationService) submit(ctx context.Context, state FormState) (FormState, error) {
	ctx, span := tracer.Start(ctx, "registration.submit")
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	next, err := s.form.OnSubmit(ctx, state)
	if err != nil {
		s.metrics.observeError()
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration store write failed")
		logger.Error("Failed to save registration record", "error", err)
		return state, err
	}

	if next.Notification.Severity == SeverityFailure {
		s.metrics.observeRejected(next.Errors)
		span.SetAttributes(
			attribute.String("registration.outcome", outcomeRejected),
			attribute.Int("registration.field_errors", len(next.Errors)),
		)
		logger.Info("Registration rejected", "invalid_fields", next.Errors.FieldNames())
		return next, nil
	}

	s.metrics.observeAccepted()
	span.SetAttributes(attribute.String("registration.outcome", outcomeAccepted))
	logger.Info("Registration record saved")

	return next, nil
}
