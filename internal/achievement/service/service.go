package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	achievementmetrics "laurel/internal/achievement/metrics"
	"laurel/internal/achievement/models"
	"laurel/internal/achievement/store"
	"laurel/internal/platform/audit"
	dErrors "laurel/pkg/domain-errors"
	"laurel/pkg/requestcontext"
)

// Store is the injected host-storage interface the registry runs against.
type Store = store.Store

// Authorizer decides whether the caller may mint achievements. The registry
// ships without one: historically any party able to reach the contract could
// issue for any user/course pair, and that open policy is part of the
// observable contract. Deployments that need issuer control install an
// Authorizer and failures surface as CodeUnauthorized.
type Authorizer func(ctx context.Context) error

// Service owns the achievement registry: identifier assignment, persistence
// of the single record sequence, and the two lookup shapes. All operations
// run against one storage entry, so writes serialize on that entry and a
// record issued by one invocation is visible to every later one.
type Service struct {
	store     Store
	logger    *slog.Logger
	metrics   *achievementmetrics.Metrics
	audit     audit.Publisher
	authorize Authorizer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *achievementmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

// WithAuthorizer installs an issuance authorization check. Leaving it unset
// preserves the open issuance policy.
func WithAuthorizer(authorize Authorizer) Option {
	return func(s *Service) {
		s.authorize = authorize
	}
}

func New(st Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("registry store is required")
	}

	svc := &Service{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue appends a new achievement to the registry and returns it. The new
// record's ID is the sequence length plus one, so IDs are unique, gapless,
// and strictly increasing as long as the sequence only ever grows. The whole
// sequence is rewritten on every call, which makes each write O(n) in the
// registry size; acceptable at current volumes, flagged on the metrics side
// via laurel_registry_replace_bytes.
func (s *Service) Issue(ctx context.Context, courseID, userID uint32, metadataURI string) (models.Achievement, error) {
	start := time.Now()
	defer s.observeIssue(start)

	if s.authorize != nil {
		if err := s.authorize(ctx); err != nil {
			return models.Achievement{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "caller may not issue achievements")
		}
	}
	if err := models.ValidateMetadataURI(metadataURI); err != nil {
		return models.Achievement{}, err
	}

	records, err := s.store.Load(ctx)
	if err != nil {
		return models.Achievement{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
	}

	achievement := models.Achievement{
		ID:          uint32(len(records)) + 1,
		CourseID:    courseID,
		UserID:      userID,
		IssuedAt:    uint64(requestcontext.Now(ctx).Unix()),
		MetadataURI: metadataURI,
	}
	records = append(records, achievement)

	// Full rewrite followed by lifetime renewal. A storage fault here aborts
	// the invocation with no partial effect: the previous value is only
	// superseded once Replace succeeds.
	if err := s.store.Replace(ctx, records); err != nil {
		return models.Achievement{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist registry")
	}
	if err := s.store.ExtendTTL(ctx); err != nil {
		return models.Achievement{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to renew registry lifetime")
	}

	s.emitIssued(ctx, achievement)
	if s.metrics != nil {
		s.metrics.IncrementIssued(len(records))
	}

	return achievement, nil
}

// Verify reports whether the given achievement exists and belongs to the
// given user. Pure read: no mutation and no lifetime renewal. An empty
// registry, an unknown ID, and an ID held by a different user are all just
// false; absence is not an error in this contract.
func (s *Service) Verify(ctx context.Context, achievementID, userID uint32) (bool, error) {
	start := time.Now()
	defer s.observeVerify(start)

	records, err := s.store.Load(ctx)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
	}
	for _, record := range records {
		if record.ID == achievementID && record.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// ListUserAchievements returns every achievement issued to the user, in
// issuance order. Pure read. The result is empty, never nil, when the user
// holds no achievements.
func (s *Service) ListUserAchievements(ctx context.Context, userID uint32) ([]models.Achievement, error) {
	start := time.Now()
	defer s.observeList(start)

	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
	}
	matches := []models.Achievement{}
	for _, record := range records {
		if record.UserID == userID {
			matches = append(matches, record)
		}
	}
	return matches, nil
}

// emitIssued publishes the issuance audit event. Best effort: a sink outage
// must not fail an issuance the store has already committed.
func (s *Service) emitIssued(ctx context.Context, achievement models.Achievement) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Action:        audit.ActionAchievementIssued,
		Timestamp:     requestcontext.Now(ctx),
		AchievementID: achievement.ID,
		CourseID:      achievement.CourseID,
		UserID:        achievement.UserID,
		Issuer:        requestcontext.Issuer(ctx),
		RequestID:     requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"achievement_id", event.AchievementID,
			"error", err.Error(),
		)
	}
}

func (s *Service) observeIssue(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveIssue(start)
	}
}

func (s *Service) observeVerify(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveVerify(start)
	}
}

func (s *Service) observeList(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveList(start)
	}
}
