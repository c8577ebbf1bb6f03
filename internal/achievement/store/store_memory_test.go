package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"laurel/internal/achievement/models"
)

type InMemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.store = NewInMemory(
		TTLConfig{Threshold: time.Hour, Extension: time.Hour},
		WithNowFunc(func() time.Time { return s.now }),
	)
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) record(id uint32) models.Achievement {
	return models.Achievement{
		ID:          id,
		CourseID:    100 + id,
		UserID:      1,
		IssuedAt:    uint64(s.now.Unix()),
		MetadataURI: "ipfs://QmW",
	}
}

func (s *InMemoryStoreSuite) TestLoadAndReplace() {
	s.Run("absent entry loads as empty", func() {
		records, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Empty(records)
	})

	s.Run("replace stores the full sequence", func() {
		want := []models.Achievement{s.record(1), s.record(2)}
		s.Require().NoError(s.store.Replace(s.ctx, want))

		got, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(want, got)
	})

	s.Run("replace overwrites rather than appends", func() {
		s.Require().NoError(s.store.Replace(s.ctx, []models.Achievement{s.record(1)}))
		s.Require().NoError(s.store.Replace(s.ctx, []models.Achievement{s.record(1), s.record(2), s.record(3)}))

		got, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Len(got, 3)
	})

	s.Run("loaded sequence is a copy", func() {
		s.Require().NoError(s.store.Replace(s.ctx, []models.Achievement{s.record(1)}))

		got, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		got[0].UserID = 99

		again, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint32(1), again[0].UserID)
	})
}

func (s *InMemoryStoreSuite) TestTTL() {
	s.Run("extend gives a fresh entry a lifetime", func() {
		s.Require().NoError(s.store.Replace(s.ctx, []models.Achievement{s.record(1)}))
		s.Require().True(s.store.Deadline().IsZero())

		s.Require().NoError(s.store.ExtendTTL(s.ctx))
		s.Equal(s.now.Add(time.Hour), s.store.Deadline())
	})

	s.Run("extend is a no-op above the threshold", func() {
		s.Require().NoError(s.store.Replace(s.ctx, []models.Achievement{s.record(1)}))
		s.Require().NoError(s.store.ExtendTTL(s.ctx))
		deadline := s.store.Deadline()

		// Well above the threshold; renewal should not move the deadline.
		s.Require().NoError(s.store.ExtendTTL(s.ctx))
		s.Equal(deadline, s.store.Deadline())
	})

	s.Run("extend renews once remaining lifetime drops below threshold", func() {
		s.Require().NoError(s.store.Replace(s.ctx, []models.Achievement{s.record(1)}))
		s.Require().NoError(s.store.ExtendTTL(s.ctx))

		s.now = s.now.Add(30 * time.Minute)
		s.Require().NoError(s.store.ExtendTTL(s.ctx))
		s.Equal(s.now.Add(time.Hour), s.store.Deadline())
	})

	s.Run("unrenewed entry is reclaimed", func() {
		s.Require().NoError(s.store.Replace(s.ctx, []models.Achievement{s.record(1)}))
		s.Require().NoError(s.store.ExtendTTL(s.ctx))

		s.now = s.now.Add(2 * time.Hour)
		records, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Empty(records)
		s.True(s.store.Deadline().IsZero())
	})

	s.Run("extend without any write is a no-op", func() {
		s.Require().NoError(s.store.ExtendTTL(s.ctx))
		s.True(s.store.Deadline().IsZero())
	})
}
