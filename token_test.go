package airport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	t.Run("should never expire a hold token", func(t *testing.T) {
		// Arrange
		var (
			landing = LandingToken{}
			takeoff = TakeoffToken{Outcome: Hold}
			later   = time.Now().Add(24 * time.Hour)
		)

		// Act & Assert
		assert.Equal(t, Hold, landing.Outcome)
		assert.False(t, landing.Expired(later))
		assert.False(t, takeoff.Expired(later))
	})

	t.Run("should expire a proceed token at its deadline", func(t *testing.T) {
		// Arrange
		var sut = newLandingToken("Aircraft 0", "r_0", "p_0", 4*time.Second)

		// Act & Assert
		assert.False(t, sut.Expired(sut.IssuedAt))
		assert.False(t, sut.Expired(sut.ExpiresAt.Add(-time.Nanosecond)))
		assert.True(t, sut.Expired(sut.ExpiresAt))
		assert.True(t, sut.Expired(sut.ExpiresAt.Add(time.Second)))
	})

	t.Run("should bind takeoff token to aircraft and runway", func(t *testing.T) {
		// Arrange & Act
		var sut = newTakeoffToken("Aircraft 0", "r_1", 4*time.Second)

		// Assert
		assert.Equal(t, Proceed, sut.Outcome)
		assert.Equal(t, "Aircraft 0", sut.AircraftID)
		assert.Equal(t, "r_1", sut.RunwayID)
		assert.Equal(t, 4*time.Second, sut.ExpiresAt.Sub(sut.IssuedAt))
	})

	t.Run("should give every token a distinct id", func(t *testing.T) {
		// Arrange & Act
		var (
			first  = newLandingToken("Aircraft 0", "r_0", "p_0", time.Second)
			second = newLandingToken("Aircraft 0", "r_0", "p_0", time.Second)
		)

		// Assert
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("should print outcomes and states", func(t *testing.T) {
		assert.Equal(t, "proceed", Proceed.String())
		assert.Equal(t, "hold", Hold.String())
		assert.Equal(t, "in_operation", RunwayInOperation.String())
		assert.Equal(t, "occupied", ParkingStandOccupied.String())
	})
}
