package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"laurel/internal/achievement/models"
	"laurel/internal/achievement/store"
	dErrors "laurel/pkg/domain-errors"
	"laurel/pkg/requestcontext"
)

type RegistryServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	service *Service
	ctx     context.Context
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	s.store = store.NewInMemory(store.DefaultTTLConfig())
	s.ctx = context.Background()

	var err error
	s.service, err = New(s.store)
	s.Require().NoError(err)
}

func (s *RegistryServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "registry store is required")
	})

	s.Run("valid store returns configured service", func() {
		svc, err := New(s.store)
		s.NoError(err)
		s.NotNil(svc)
	})
}

func (s *RegistryServiceSuite) TestIssue() {
	s.Run("assigns gapless increasing ids starting at 1", func() {
		for k := uint32(1); k <= 5; k++ {
			achievement, err := s.service.Issue(s.ctx, 100+k, 7, "ipfs://QmW")
			s.Require().NoError(err)
			s.Equal(k, achievement.ID)
		}
	})

	s.Run("round-trips inputs and stamps the ledger clock", func() {
		issuedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
		ctx := requestcontext.WithTime(s.ctx, issuedAt)

		achievement, err := s.service.Issue(ctx, 101, 1, "ipfs://QmW1")
		s.Require().NoError(err)
		s.Equal(uint32(101), achievement.CourseID)
		s.Equal(uint32(1), achievement.UserID)
		s.Equal("ipfs://QmW1", achievement.MetadataURI)
		s.Equal(uint64(issuedAt.Unix()), achievement.IssuedAt)
	})

	s.Run("rejects oversized metadata uri", func() {
		_, err := s.service.Issue(s.ctx, 101, 1, "ipfs://"+strings.Repeat("Q", models.MaxMetadataURIBytes))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("accepts metadata uri at the size limit", func() {
		uri := strings.Repeat("a", models.MaxMetadataURIBytes)
		achievement, err := s.service.Issue(s.ctx, 101, 1, uri)
		s.Require().NoError(err)
		s.Equal(uri, achievement.MetadataURI)
	})

	s.Run("renews storage lifetime", func() {
		fresh := store.NewInMemory(store.DefaultTTLConfig())
		svc, err := New(fresh)
		s.Require().NoError(err)

		s.Require().True(fresh.Deadline().IsZero())
		_, err = svc.Issue(s.ctx, 101, 1, "ipfs://QmW1")
		s.Require().NoError(err)
		s.False(fresh.Deadline().IsZero())
	})

	s.Run("propagates storage faults as internal errors", func() {
		svc, err := New(&faultyStore{})
		s.Require().NoError(err)

		_, err = svc.Issue(s.ctx, 101, 1, "ipfs://QmW1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *RegistryServiceSuite) TestIssueAuthorization() {
	s.Run("open policy accepts any caller", func() {
		_, err := s.service.Issue(s.ctx, 101, 1, "ipfs://QmW1")
		s.NoError(err)
	})

	s.Run("installed authorizer can reject issuance", func() {
		fresh := store.NewInMemory(store.DefaultTTLConfig())
		svc, err := New(fresh, WithAuthorizer(func(ctx context.Context) error {
			return errors.New("unknown issuer")
		}))
		s.Require().NoError(err)

		_, err = svc.Issue(s.ctx, 101, 1, "ipfs://QmW1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		// Rejected issuance leaves the registry untouched.
		records, err := fresh.Load(s.ctx)
		s.Require().NoError(err)
		s.Empty(records)
	})
}

func (s *RegistryServiceSuite) TestVerify() {
	s.Run("empty registry verifies nothing", func() {
		verified, err := s.service.Verify(s.ctx, 1, 1)
		s.Require().NoError(err)
		s.False(verified)
	})

	s.Run("matches id and holder together", func() {
		achievement, err := s.service.Issue(s.ctx, 101, 1, "ipfs://QmW1")
		s.Require().NoError(err)

		verified, err := s.service.Verify(s.ctx, achievement.ID, 1)
		s.Require().NoError(err)
		s.True(verified)

		verified, err = s.service.Verify(s.ctx, achievement.ID, 2)
		s.Require().NoError(err)
		s.False(verified)

		verified, err = s.service.Verify(s.ctx, 999, 1)
		s.Require().NoError(err)
		s.False(verified)
	})

	s.Run("does not renew storage lifetime", func() {
		_, err := s.service.Issue(s.ctx, 101, 1, "ipfs://QmW1")
		s.Require().NoError(err)
		deadline := s.store.Deadline()

		_, err = s.service.Verify(s.ctx, 1, 1)
		s.Require().NoError(err)
		s.Equal(deadline, s.store.Deadline())
	})
}

func (s *RegistryServiceSuite) TestListUserAchievements() {
	s.Run("returns the user's records in issuance order", func() {
		_, err := s.service.Issue(s.ctx, 101, 1, "ipfs://QmW1")
		s.Require().NoError(err)
		_, err = s.service.Issue(s.ctx, 102, 1, "ipfs://QmW2")
		s.Require().NoError(err)
		_, err = s.service.Issue(s.ctx, 201, 2, "ipfs://QmW3")
		s.Require().NoError(err)

		user1, err := s.service.ListUserAchievements(s.ctx, 1)
		s.Require().NoError(err)
		s.Require().Len(user1, 2)
		s.Equal(uint32(1), user1[0].ID)
		s.Equal(uint32(2), user1[1].ID)
		s.Equal(uint32(101), user1[0].CourseID)
		s.Equal(uint32(102), user1[1].CourseID)

		user2, err := s.service.ListUserAchievements(s.ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(user2, 1)
		s.Equal(uint32(3), user2[0].ID)

		user3, err := s.service.ListUserAchievements(s.ctx, 3)
		s.Require().NoError(err)
		s.Empty(user3)
		s.NotNil(user3)
	})

	s.Run("reads are idempotent", func() {
		_, err := s.service.Issue(s.ctx, 101, 1, "ipfs://QmW1")
		s.Require().NoError(err)

		first, err := s.service.ListUserAchievements(s.ctx, 1)
		s.Require().NoError(err)
		second, err := s.service.ListUserAchievements(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(first, second)
	})
}

// faultyStore fails every operation, standing in for a host storage fault.
type faultyStore struct{}

func (f *faultyStore) Load(context.Context) ([]models.Achievement, error) {
	return nil, errors.New("storage limit exceeded")
}

func (f *faultyStore) Replace(context.Context, []models.Achievement) error {
	return errors.New("storage limit exceeded")
}

func (f *faultyStore) ExtendTTL(context.Context) error {
	return errors.New("storage limit exceeded")
}
