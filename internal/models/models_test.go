package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestBill_RemainingAmount(t *testing.T) {
	b := Bill{Amount: 1000, PaidAmount: 400}
	assert.Equal(t, 600.0, b.RemainingAmount())
}

func TestBill_IsOverdue(t *testing.T) {
	tests := []struct {
		name   string
		due    time.Time
		status string
		want   bool
	}{
		{"past due unpaid", now.AddDate(0, 0, -1), PaymentUnpaid, true},
		{"past due partial", now.AddDate(0, 0, -1), PaymentPartiallyPaid, true},
		{"past due paid", now.AddDate(0, 0, -1), PaymentPaid, false},
		{"due later", now.AddDate(0, 0, 1), PaymentUnpaid, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bill{DueDate: tt.due, PaymentStatus: tt.status}
			assert.Equal(t, tt.want, b.IsOverdue(now))
		})
	}
}

func TestBill_DaysOverdue(t *testing.T) {
	b := Bill{DueDate: now.AddDate(0, 0, -5)}
	assert.Equal(t, 5, b.DaysOverdue(now))

	b.DueDate = now.AddDate(0, 0, 2)
	assert.Equal(t, 0, b.DaysOverdue(now))
}

func TestExpiringSoon(t *testing.T) {
	d := Domain{ExpiryDate: now.AddDate(0, 0, 30)}
	assert.True(t, d.IsExpiringSoon(now))
	assert.False(t, d.IsExpired(now))

	d.ExpiryDate = now.AddDate(0, 0, 31)
	assert.False(t, d.IsExpiringSoon(now))

	d.ExpiryDate = now.AddDate(0, 0, -1)
	assert.False(t, d.IsExpiringSoon(now), "expired domains are not expiring soon")
	assert.True(t, d.IsExpired(now))

	h := HostingService{RenewalDate: now.AddDate(0, 0, 10)}
	assert.True(t, h.IsDueForRenewal(now))

	s := SslCertificate{ExpiryDate: now.AddDate(0, 2, 0)}
	assert.False(t, s.IsExpiringSoon(now))
}

func TestUser_Permissions(t *testing.T) {
	manager := User{UserType: UserTypeAccountManager, IsActive: true}
	assert.True(t, manager.CanManageBills())
	assert.False(t, manager.CanApproveBills())

	approver := User{UserType: UserTypeApprover, IsActive: true}
	assert.True(t, approver.CanManageBills())
	assert.True(t, approver.CanApproveBills())

	approver.IsActive = false
	assert.False(t, approver.CanManageBills())
	assert.False(t, approver.CanApproveBills())
}

func TestHostingService_WithoutCredentials(t *testing.T) {
	h := HostingService{ID: uuid.New(), Username: "root", Password: "secret"}
	clean := h.WithoutCredentials()

	assert.Empty(t, clean.Username)
	assert.Empty(t, clean.Password)
	assert.Equal(t, h.ID, clean.ID)
	assert.Equal(t, "secret", h.Password, "original keeps its credentials")
}

func TestSalaryState_Valid(t *testing.T) {
	for _, s := range SalaryStates {
		assert.True(t, s.Valid())
	}
	assert.False(t, SalaryState("pending").Valid())
}
