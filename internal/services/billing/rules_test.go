package billing

import (
	"testing"
	"time"

	"agency-billing-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, models.PaymentUnpaid, DerivePaymentStatus(1000, 0))
	assert.Equal(t, models.PaymentPartiallyPaid, DerivePaymentStatus(1000, 400))
	assert.Equal(t, models.PaymentPaid, DerivePaymentStatus(1000, 1000))
	assert.Equal(t, models.PaymentPaid, DerivePaymentStatus(0, 0), "a zero amount bill is settled")
}

func TestUpdatePaymentStatus_Progression(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	bill := &models.Bill{Amount: 1000}

	UpdatePaymentStatus(bill, first)
	assert.Equal(t, models.PaymentUnpaid, bill.PaymentStatus)
	assert.Nil(t, bill.PaidDate)

	bill.PaidAmount = 400
	UpdatePaymentStatus(bill, first)
	assert.Equal(t, models.PaymentPartiallyPaid, bill.PaymentStatus)
	assert.Nil(t, bill.PaidDate)
	assert.Equal(t, 600.0, bill.RemainingAmount())

	later := first.AddDate(0, 0, 10)
	bill.PaidAmount = 1000
	UpdatePaymentStatus(bill, later)
	assert.Equal(t, models.PaymentPaid, bill.PaymentStatus)
	require.NotNil(t, bill.PaidDate)
	assert.Equal(t, later, *bill.PaidDate)
	assert.Zero(t, bill.RemainingAmount())

	bill.PaidAmount = 0
	UpdatePaymentStatus(bill, later)
	assert.Equal(t, models.PaymentUnpaid, bill.PaymentStatus)
	assert.Nil(t, bill.PaidDate, "reverting to unpaid clears the paid date")
}

func TestUpdatePaymentStatus_PartialKeepsPaidDate(t *testing.T) {
	paidOn := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	bill := &models.Bill{Amount: 1000, PaidAmount: 500, PaidDate: &paidOn}

	UpdatePaymentStatus(bill, paidOn.AddDate(0, 1, 0))
	assert.Equal(t, models.PaymentPartiallyPaid, bill.PaymentStatus)
	assert.Equal(t, &paidOn, bill.PaidDate)
}

func TestNewServiceRef(t *testing.T) {
	id := uuid.New()

	ref, err := NewServiceRef(models.ServiceTypeDomain, &id)
	require.NoError(t, err)
	assert.Equal(t, DomainRef{ID: id}, ref)
	assert.Equal(t, &id, ref.ServiceID())

	ref, err = NewServiceRef(models.ServiceTypeHosting, &id)
	require.NoError(t, err)
	assert.IsType(t, HostingRef{}, ref)

	ref, err = NewServiceRef(models.ServiceTypeSSL, &id)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceTypeSSL, ref.ServiceType())

	ref, err = NewServiceRef(models.ServiceTypeEimsFee, &id)
	require.NoError(t, err)
	assert.Nil(t, ref.ServiceID(), "EIMS fees never carry a service id")

	_, err = NewServiceRef(models.ServiceTypeDomain, nil)
	assert.Error(t, err)

	_, err = NewServiceRef("mailbox", &id)
	assert.Error(t, err)
}

func TestValidBillingMonth(t *testing.T) {
	assert.True(t, ValidBillingMonth("2026-01"))
	assert.True(t, ValidBillingMonth("2025-12"))
	assert.False(t, ValidBillingMonth("2026-13"))
	assert.False(t, ValidBillingMonth("2026-1"))
	assert.False(t, ValidBillingMonth("01-2026"))
	assert.False(t, ValidBillingMonth(""))
}
