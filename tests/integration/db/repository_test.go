package db

import (
	"context"
	"log"
	"testing"
	"time"

	"payment-webhook-service/internal/db"
	"payment-webhook-service/tests/testhelpers"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ReservationRepositoryTestSuite struct {
	suite.Suite
	pgContainer *testhelpers.PostgresContainer
	pool        *pgxpool.Pool
	sut         *db.ReservationRepository
	ctx         context.Context
}

func (s *ReservationRepositoryTestSuite) SetupSuite() {
	time.Local = time.UTC

	s.ctx = context.Background()
	pgContainer, err := testhelpers.CreatePostgresContainer(s.ctx)
	if err != nil {
		log.Fatal(err)
	}
	s.pgContainer = pgContainer

	if err := db.RunMigrations(pgContainer.ConnectionString, "../../../migrations"); err != nil {
		log.Fatal(err)
	}

	pool, err := db.GetPool(pgContainer.ConnectionString)
	if err != nil {
		log.Fatal(err)
	}

	s.pool = pool
	s.sut = db.NewReservationRepository(pool)
}

func (s *ReservationRepositoryTestSuite) TearDownSuite() {
	s.pool.Close()

	if err := s.pgContainer.Terminate(s.ctx); err != nil {
		log.Fatalf("error terminating postgres container: %s", err)
	}
}

func (s *ReservationRepositoryTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "DELETE FROM reservation")
	if err != nil {
		log.Fatalf("error truncating reservation table: %s", err)
	}
}

func (s *ReservationRepositoryTestSuite) createReservation() *db.ReservationEntity {
	t := s.T()

	entity := &db.ReservationEntity{
		ID:         uuid.New(),
		Code:       "RES-1",
		Status:     db.ReservationStatusPending,
		PriceCents: 10000,
		Currency:   "eur",
		GuestEmail: "guest@example.com",
	}

	created, err := s.sut.Create(s.ctx, entity)
	assert.NoError(t, err)
	assert.NotNil(t, created)

	return created
}

func (s *ReservationRepositoryTestSuite) TestCreateAndSelectByID() {
	t := s.T()

	entity := s.createReservation()

	selected, err := s.sut.SelectByID(s.ctx, entity.ID)
	assert.NoError(t, err)
	assert.Equal(t, entity.ID, selected.ID)
	assert.Equal(t, "RES-1", selected.Code)
	assert.Equal(t, db.ReservationStatusPending, selected.Status)
	assert.Equal(t, int64(10000), selected.PriceCents)
	assert.False(t, selected.Paid)
	assert.False(t, selected.Refunded)
	assert.Nil(t, selected.StripePaymentIntentID)
}

func (s *ReservationRepositoryTestSuite) TestSelectByID_NotFound() {
	t := s.T()

	_, err := s.sut.SelectByID(s.ctx, uuid.New())
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func (s *ReservationRepositoryTestSuite) TestConfirm() {
	t := s.T()

	entity := s.createReservation()

	err := s.sut.Confirm(s.ctx, entity.ID, "pi_1", "pm_1")
	assert.NoError(t, err)

	confirmed, err := s.sut.SelectByID(s.ctx, entity.ID)
	assert.NoError(t, err)
	assert.Equal(t, db.ReservationStatusConfirmed, confirmed.Status)
	assert.Equal(t, "pi_1", *confirmed.StripePaymentIntentID)
	assert.Equal(t, "pm_1", *confirmed.StripePaymentMethodID)
}

func (s *ReservationRepositoryTestSuite) TestSelectByPaymentIntentID() {
	t := s.T()

	entity := s.createReservation()

	err := s.sut.Confirm(s.ctx, entity.ID, "pi_1", "pm_1")
	assert.NoError(t, err)

	selected, err := s.sut.SelectByPaymentIntentID(s.ctx, "pi_1")
	assert.NoError(t, err)
	assert.Equal(t, entity.ID, selected.ID)

	_, err = s.sut.SelectByPaymentIntentID(s.ctx, "pi_unknown")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func (s *ReservationRepositoryTestSuite) TestMarkPaid() {
	t := s.T()

	entity := s.createReservation()

	err := s.sut.MarkPaid(s.ctx, entity.ID, "pi_1", 10000)
	assert.NoError(t, err)

	paid, err := s.sut.SelectByID(s.ctx, entity.ID)
	assert.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, int64(10000), paid.AmountReceivedCents)
	assert.Equal(t, "pi_1", *paid.StripePaymentIntentID)
}

func (s *ReservationRepositoryTestSuite) TestMarkRefundedAccumulates() {
	t := s.T()

	entity := s.createReservation()

	err := s.sut.MarkRefunded(s.ctx, entity.ID, 3000)
	assert.NoError(t, err)

	err = s.sut.MarkRefunded(s.ctx, entity.ID, 7000)
	assert.NoError(t, err)

	refunded, err := s.sut.SelectByID(s.ctx, entity.ID)
	assert.NoError(t, err)
	assert.True(t, refunded.Refunded)
	assert.Equal(t, db.ReservationStatusCancelled, refunded.Status)
	assert.Equal(t, int64(10000), refunded.RefundedAmountCents)
}

func (s *ReservationRepositoryTestSuite) TestRecordPaymentFailure() {
	t := s.T()

	entity := s.createReservation()

	err := s.sut.RecordPaymentFailure(s.ctx, entity.ID, "card_declined: insufficient funds")
	assert.NoError(t, err)

	failed, err := s.sut.SelectByID(s.ctx, entity.ID)
	assert.NoError(t, err)
	assert.Equal(t, "card_declined: insufficient funds", *failed.LastPaymentError)
}

func TestReservationRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ReservationRepositoryTestSuite))
}
