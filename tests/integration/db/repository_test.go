package db

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"nets-gateway/internal/db"
	"nets-gateway/tests/testhelpers"
)

type PaymentRepositoryTestSuite struct {
	suite.Suite
	pgContainer *testhelpers.PostgresContainer
	pool        *pgxpool.Pool
	sut         *db.PaymentRepository
	ctx         context.Context
}

func (s *PaymentRepositoryTestSuite) SetupSuite() {
	time.Local = time.UTC

	s.ctx = context.Background()
	pgContainer, err := testhelpers.CreatePostgresContainer(s.ctx)
	if err != nil {
		log.Fatal(err)
	}
	s.pgContainer = pgContainer

	db.RunMigrations(pgContainer.ConnectionString, "../../../migrations")

	pool, err := db.GetPool(pgContainer.ConnectionString)
	if err != nil {
		log.Fatal(err)
	}

	s.pool = pool
	s.sut = db.NewPaymentRepository(pool)
}

func (s *PaymentRepositoryTestSuite) TearDownSuite() {
	s.pool.Close()

	if err := s.pgContainer.Terminate(s.ctx); err != nil {
		log.Fatalf("error terminating postgres container: %s", err)
	}
}

func (s *PaymentRepositoryTestSuite) SetupTest() {
	if _, err := s.pool.Exec(s.ctx, "DELETE FROM payment"); err != nil {
		log.Fatalf("error truncating payment table: %s", err)
	}
	if _, err := s.pool.Exec(s.ctx, "DELETE FROM checkout_session"); err != nil {
		log.Fatalf("error truncating checkout_session table: %s", err)
	}
}

func (s *PaymentRepositoryTestSuite) newPayment() *db.PaymentEntity {
	return &db.PaymentEntity{
		ID:          uuid.New(),
		OrderNumber: "4711",
		Amount:      12050,
		Currency:    "NOK",
		State:       db.StateAuthorization,
		RemoteID:    "b127f98b77f741429b7b8b9f316607a1",
		RemoteState: "OK",
	}
}

func (s *PaymentRepositoryTestSuite) TestBeginTx() {
	t := s.T()

	tx, err := s.sut.BeginTx(s.ctx)
	assert.NoError(t, err)
	assert.NotNil(t, tx)

	err = tx.Rollback(s.ctx)
	assert.NoError(t, err)
}

func (s *PaymentRepositoryTestSuite) TestCreateAndSelect() {
	t := s.T()

	entity := s.newPayment()

	err := s.sut.Create(s.ctx, entity)
	assert.NoError(t, err)

	found, err := s.sut.SelectByID(s.ctx, entity.ID)
	assert.NoError(t, err)
	assert.Equal(t, entity.ID, found.ID)
	assert.Equal(t, entity.OrderNumber, found.OrderNumber)
	assert.Equal(t, entity.Amount, found.Amount)
	assert.Equal(t, db.StateAuthorization, found.State)
}

func (s *PaymentRepositoryTestSuite) TestUpdate() {
	t := s.T()

	entity := s.newPayment()
	err := s.sut.Create(s.ctx, entity)
	assert.NoError(t, err)

	tx, err := s.sut.BeginTx(s.ctx)
	assert.NoError(t, err)
	defer tx.Rollback(s.ctx)

	locked, err := s.sut.SelectForUpdateByID(s.ctx, tx, entity.ID)
	assert.NoError(t, err)

	locked.State = db.StateCompleted
	locked.RemoteState = "OK"
	err = s.sut.Update(s.ctx, tx, locked)
	assert.NoError(t, err)

	err = tx.Commit(s.ctx)
	assert.NoError(t, err)

	found, err := s.sut.SelectByID(s.ctx, entity.ID)
	assert.NoError(t, err)
	assert.Equal(t, db.StateCompleted, found.State)
}

func (s *PaymentRepositoryTestSuite) TestCreateInTx() {
	t := s.T()

	parent := s.newPayment()
	err := s.sut.Create(s.ctx, parent)
	assert.NoError(t, err)

	tx, err := s.sut.BeginTx(s.ctx)
	assert.NoError(t, err)
	defer tx.Rollback(s.ctx)

	split := s.newPayment()
	split.ID = uuid.New()
	split.Amount = 5000
	split.State = db.StateCompleted

	err = s.sut.CreateInTx(s.ctx, tx, split)
	assert.NoError(t, err)

	err = tx.Commit(s.ctx)
	assert.NoError(t, err)

	found, err := s.sut.SelectByID(s.ctx, split.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), found.Amount)
}

func (s *PaymentRepositoryTestSuite) TestSelectByRemoteID() {
	t := s.T()

	first := s.newPayment()
	err := s.sut.Create(s.ctx, first)
	assert.NoError(t, err)

	second := s.newPayment()
	second.ID = uuid.New()
	err = s.sut.Create(s.ctx, second)
	assert.NoError(t, err)

	found, err := s.sut.SelectByRemoteID(s.ctx, first.RemoteID)
	assert.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.sut.SelectByRemoteID(s.ctx, "unknown")
	assert.NoError(t, err)
	assert.Empty(t, found)
}

func (s *PaymentRepositoryTestSuite) TestSessionLifecycle() {
	t := s.T()

	session := &db.CheckoutSessionEntity{
		RemoteID:    "b127f98b77f741429b7b8b9f316607a1",
		OrderNumber: "4711",
		Amount:      12050,
		Currency:    "NOK",
		Capture:     true,
		CreatedAt:   time.Now(),
	}

	err := s.sut.CreateSession(s.ctx, session)
	assert.NoError(t, err)

	found, err := s.sut.SelectSessionByRemoteID(s.ctx, session.RemoteID)
	assert.NoError(t, err)
	assert.Equal(t, session.OrderNumber, found.OrderNumber)
	assert.True(t, found.Capture)
	assert.Nil(t, found.ConsumedAt)

	err = s.sut.ConsumeSession(s.ctx, session.RemoteID)
	assert.NoError(t, err)

	found, err = s.sut.SelectSessionByRemoteID(s.ctx, session.RemoteID)
	assert.NoError(t, err)
	assert.NotNil(t, found.ConsumedAt)
}

func (s *PaymentRepositoryTestSuite) TestConsumeSessionTwice() {
	t := s.T()

	session := &db.CheckoutSessionEntity{
		RemoteID:    "c227f98b77f741429b7b8b9f316607a2",
		OrderNumber: "4712",
		Amount:      900,
		Currency:    "NOK",
		CreatedAt:   time.Now(),
	}

	err := s.sut.CreateSession(s.ctx, session)
	assert.NoError(t, err)

	err = s.sut.ConsumeSession(s.ctx, session.RemoteID)
	assert.NoError(t, err)

	err = s.sut.ConsumeSession(s.ctx, session.RemoteID)
	assert.Error(t, err)
}

func TestPaymentRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentRepositoryTestSuite))
}
