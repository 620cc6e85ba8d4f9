//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"sitewatch/internal/audit"
	"sitewatch/internal/audit/store/postgres"
	"sitewatch/pkg/domain"
	"sitewatch/pkg/platform/sentinel"
	"sitewatch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	store *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(s.T())
	s.T().Cleanup(func() { _ = pg.Terminate(ctx) })

	pool, err := pgxpool.New(ctx, pg.DSN)
	s.Require().NoError(err)
	s.pool = pool
	s.store = postgres.New(pool)
	s.Require().NoError(s.store.EnsureSchema(ctx))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, "TRUNCATE audit_entries, audit_trails")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newEntry(description string) audit.Entry {
	e, err := audit.NewEntry("worker-1", description, audit.DataAccessDetail{
		Resource:   "badge-log",
		AccessType: "READ",
		Granted:    true,
	})
	s.Require().NoError(err)
	return e
}

func (s *PostgresStoreSuite) TestCreateTrail() {
	ctx := context.Background()
	sessionID := domain.NewSessionID()

	s.Require().NoError(s.store.CreateTrail(ctx, sessionID, "site-42"))
	s.ErrorIs(s.store.CreateTrail(ctx, sessionID, "site-42"), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestAppendAndLoad() {
	ctx := context.Background()
	sessionID := domain.NewSessionID()
	s.Require().NoError(s.store.CreateTrail(ctx, sessionID, "site-42"))

	first := s.newEntry("first scan")
	second := s.newEntry("second scan")
	s.Require().NoError(s.store.Append(ctx, sessionID, 1, first, "digest-1"))
	s.Require().NoError(s.store.Append(ctx, sessionID, 2, second, "digest-2"))

	trail, err := s.store.LoadTrail(ctx, sessionID)
	s.Require().NoError(err)
	s.Equal("site-42", trail.OwnerID)
	s.Equal(uint64(2), trail.Version)
	s.Equal("digest-2", trail.IntegrityDigest)
	s.Require().Len(trail.Entries, 2)
	s.Equal(first.ID, trail.Entries[0].ID)
	s.Equal(second.ID, trail.Entries[1].ID)
	s.Equal(first.Timestamp, trail.Entries[0].Timestamp)
}

func (s *PostgresStoreSuite) TestAppendVersionGuard() {
	ctx := context.Background()
	sessionID := domain.NewSessionID()
	s.Require().NoError(s.store.CreateTrail(ctx, sessionID, "site-42"))
	s.Require().NoError(s.store.Append(ctx, sessionID, 1, s.newEntry("first"), "digest-1"))

	// Skipping a sequence number or replaying one must both fail.
	s.ErrorIs(s.store.Append(ctx, sessionID, 3, s.newEntry("skipped"), "digest-3"), sentinel.ErrConflict)
	s.ErrorIs(s.store.Append(ctx, sessionID, 1, s.newEntry("replayed"), "digest-1"), sentinel.ErrConflict)

	trail, err := s.store.LoadTrail(ctx, sessionID)
	s.Require().NoError(err)
	s.Len(trail.Entries, 1)
	s.Equal(uint64(1), trail.Version)
}

func (s *PostgresStoreSuite) TestLoadTrail_NotFound() {
	_, err := s.store.LoadTrail(context.Background(), domain.NewSessionID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
