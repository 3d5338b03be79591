package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/models"
)

func TestCalculateRoyalty(t *testing.T) {
	tests := []struct {
		name     string
		contract models.Contract
		revenue  float64
		want     float64
	}{
		{
			name:     "revenue share",
			contract: models.Contract{RoyaltyType: models.RoyaltyTypeRevenueShare, RoyaltyRate: floatPtr(12.5)},
			revenue:  10000,
			want:     1250,
		},
		{
			name:     "revenue share rounds to cents",
			contract: models.Contract{RoyaltyType: models.RoyaltyTypeRevenueShare, RoyaltyRate: floatPtr(33.33)},
			revenue:  100.01,
			want:     33.33,
		},
		{
			name: "minimum payment is a floor",
			contract: models.Contract{
				RoyaltyType:    models.RoyaltyTypeRevenueShare,
				RoyaltyRate:    floatPtr(10),
				MinimumPayment: floatPtr(500),
			},
			revenue: 1000,
			want:    500,
		},
		{
			name: "minimum payment below share is ignored",
			contract: models.Contract{
				RoyaltyType:    models.RoyaltyTypeRevenueShare,
				RoyaltyRate:    floatPtr(10),
				MinimumPayment: floatPtr(50),
			},
			revenue: 1000,
			want:    100,
		},
		{
			name:     "flat fee ignores revenue",
			contract: models.Contract{RoyaltyType: models.RoyaltyTypeFlatFee, FlatFeeAmount: floatPtr(2500)},
			revenue:  0,
			want:     2500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateRoyalty(&tt.contract, tt.revenue)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestCalculateRoyaltyErrors(t *testing.T) {
	_, err := CalculateRoyalty(&models.Contract{RoyaltyType: models.RoyaltyTypeFlatFee, FlatFeeAmount: floatPtr(10)}, -1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.hasField("revenue"))

	_, err = CalculateRoyalty(&models.Contract{}, 100)
	assert.ErrorIs(t, err, ErrDataIntegrity)

	_, err = CalculateRoyalty(&models.Contract{RoyaltyType: models.RoyaltyTypeRevenueShare}, 100)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestNextRoyaltyStatus(t *testing.T) {
	next, err := NextRoyaltyStatus(models.RoyaltyStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.RoyaltyStatusApproved, next)

	next, err = NextRoyaltyStatus(models.RoyaltyStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.RoyaltyStatusPaid, next)

	_, err = NextRoyaltyStatus(models.RoyaltyStatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApproveRoyaltyRejectsPaid(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewRoyaltyService(db, nil, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "royalties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "status"}).
			AddRow(id, uuid.New(), models.RoyaltyStatusPaid))
	mock.ExpectRollback()

	_, err := service.ApproveRoyalty(context.Background(), Actor{}, id)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaidRequiresApproval(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewRoyaltyService(db, nil, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "royalties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "status"}).
			AddRow(id, uuid.New(), models.RoyaltyStatusPending))
	mock.ExpectRollback()

	_, err := service.MarkPaid(context.Background(), Actor{}, id, &MarkPaidRequest{Reference: "wire-42"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildStatement(t *testing.T) {
	paidAt := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	contractID := uuid.New()
	royalties := []models.Royalty{
		{
			ContractID:       contractID,
			ReportingPeriod:  "2025-Q1",
			Revenue:          10000,
			RoyaltyAmount:    1500,
			Status:           models.RoyaltyStatusPaid,
			PaidAt:           &paidAt,
			PaymentReference: "tr_123",
			Contract: models.Contract{
				Partner:     "Acme",
				RoyaltyType: models.RoyaltyTypeRevenueShare,
				RoyaltyRate: floatPtr(15),
			},
		},
		{
			ContractID:      contractID,
			ReportingPeriod: "2025-Q2",
			Revenue:         2000.10,
			RoyaltyAmount:   300.02,
			Status:          models.RoyaltyStatusPending,
			Contract: models.Contract{
				Partner:     "Acme",
				RoyaltyType: models.RoyaltyTypeRevenueShare,
				RoyaltyRate: floatPtr(15),
			},
		},
	}

	data, err := BuildStatement(royalties)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(statementSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, statementHeaders, rows[0])
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, contractID.String(), rows[1][1])
	assert.Equal(t, "2025-Q1", rows[1][2])
	assert.Equal(t, "Paid", rows[1][7])
	assert.Equal(t, "2025-07-15", rows[1][8])
	assert.Equal(t, "tr_123", rows[1][9])

	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "12000.1", rows[3][3])
	assert.Equal(t, "1800.02", rows[3][6])
}

func TestBuildStatementEmpty(t *testing.T) {
	data, err := BuildStatement(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	total, err := f.GetCellValue(statementSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Total", total)
}

func TestMarkPaidWithDestinationNeedsPayments(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewRoyaltyService(db, nil, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "royalties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "contract_id", "status", "royalty_amount"}).
			AddRow(id, uuid.New(), models.RoyaltyStatusApproved, 150.0))
	mock.ExpectRollback()

	_, err := service.MarkPaid(context.Background(), Actor{}, id, &MarkPaidRequest{DestinationAccount: "acct_1"})

	assert.ErrorIs(t, err, ErrPaymentsDisabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentServiceDisabledWithoutKey(t *testing.T) {
	service := NewPaymentService(&config.Config{})

	assert.False(t, service.Enabled())
	_, err := service.Transfer(context.Background(), PayoutRequest{Amount: 10, Destination: "acct_1"})
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}
