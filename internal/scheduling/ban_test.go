package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulapps/etut-api/internal/models"
)

func TestBanOpensFourteenDayWindow(t *testing.T) {
	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	student := models.Student{ID: "s1", Name: "Ali Veli"}

	banned := Ban(student, now)
	require.NotNil(t, banned.BanEndDate)
	assert.True(t, banned.IsBanned)
	assert.Equal(t, now.Add(14*24*time.Hour), *banned.BanEndDate)

	assert.True(t, IsBanned(banned, now))
	assert.True(t, IsBanned(banned, now.Add(13*24*time.Hour)))
}

func TestBanExpiresLazily(t *testing.T) {
	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	banned := Ban(models.Student{ID: "s1"}, now)

	// No state transition happens at expiry, the read-time check flips.
	after := now.Add(BanDuration)
	assert.False(t, IsBanned(banned, after))
	assert.True(t, banned.IsBanned, "flag stays set, expiry is derived")
}

func TestIsBannedRequiresBothFlagAndWindow(t *testing.T) {
	now := time.Now()
	end := now.Add(time.Hour)

	assert.False(t, IsBanned(models.Student{IsBanned: false, BanEndDate: &end}, now))
	assert.False(t, IsBanned(models.Student{IsBanned: true}, now))
	assert.True(t, IsBanned(models.Student{IsBanned: true, BanEndDate: &end}, now))
}

func TestUnbanClearsWindow(t *testing.T) {
	banned := Ban(models.Student{ID: "s1"}, time.Now())
	cleared := Unban(banned)
	assert.False(t, cleared.IsBanned)
	assert.Nil(t, cleared.BanEndDate)
	assert.False(t, IsBanned(cleared, time.Now()))
}
