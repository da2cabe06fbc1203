package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validCode() *DiscountCode {
	return &DiscountCode{
		ID:        1,
		Code:      "WELCOME10",
		Type:      DiscountPercentage,
		Value:     10,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
		IsActive:  true,
	}
}

func TestDiscountCodeIsValid(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("active code within dates", func(t *testing.T) {
		assert.True(t, validCode().IsValid(now))
	})

	t.Run("inactive code", func(t *testing.T) {
		code := validCode()
		code.IsActive = false
		assert.False(t, code.IsValid(now))
	})

	t.Run("before start date", func(t *testing.T) {
		code := validCode()
		assert.False(t, code.IsValid(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("after end date", func(t *testing.T) {
		code := validCode()
		assert.False(t, code.IsValid(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("one-time code already used", func(t *testing.T) {
		code := validCode()
		code.IsOneTime = true
		code.IsUsed = true
		assert.False(t, code.IsValid(now))
	})

	t.Run("reusable code stays valid after use", func(t *testing.T) {
		code := validCode()
		code.IsUsed = true
		assert.True(t, code.IsValid(now))
	})
}

func TestDiscountCodeAvailableFor(t *testing.T) {
	code := validCode()
	assert.True(t, code.AvailableFor(42), "shared code available to anyone")

	owner := int64(42)
	code.PatientID = &owner
	assert.True(t, code.AvailableFor(42))
	assert.False(t, code.AvailableFor(43))
}

func TestDiscountCodeAmount(t *testing.T) {
	tests := []struct {
		name       string
		codeType   DiscountType
		value      int64
		totalPrice int64
		want       int64
	}{
		{"percentage", DiscountPercentage, 10, 500_000, 50_000},
		{"percentage rounds down", DiscountPercentage, 15, 1001, 150},
		{"fixed amount", DiscountFixedAmount, 30_000, 500_000, 30_000},
		{"fixed amount capped at price", DiscountFixedAmount, 700_000, 500_000, 500_000},
		{"zero price", DiscountPercentage, 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := &DiscountCode{Type: tt.codeType, Value: tt.value}
			assert.Equal(t, tt.want, code.Amount(tt.totalPrice))
		})
	}
}

func TestGenderScopeMatchesGender(t *testing.T) {
	male := GenderMale
	female := GenderFemale

	assert.True(t, GenderScopeAll.MatchesGender(nil))
	assert.True(t, GenderScopeAll.MatchesGender(&male))
	assert.True(t, GenderScopeAll.MatchesGender(&female))

	assert.False(t, GenderScopeMale.MatchesGender(nil), "guest sees only ALL intervals")
	assert.True(t, GenderScopeMale.MatchesGender(&male))
	assert.False(t, GenderScopeMale.MatchesGender(&female))

	assert.False(t, GenderScopeFemale.MatchesGender(nil))
	assert.True(t, GenderScopeFemale.MatchesGender(&female))
	assert.False(t, GenderScopeFemale.MatchesGender(&male))
}
