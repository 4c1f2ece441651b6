package airport

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestAirportConcurrency(t *testing.T) {
	t.Run("should grant a single pair to exactly one of two racing aircraft", func(t *testing.T) {
		for round := range 20 {
			// Arrange
			var (
				sut    = newTestAirport(t, []string{"r_0"}, []string{"p_0"})
				tokens [2]LandingToken
				start  = make(chan struct{})
				g      errgroup.Group
			)

			// Act
			for i := range tokens {
				g.Go(func() error {
					<-start
					var token, err = sut.RequestLanding(fmt.Sprintf("Aircraft %d", i))
					tokens[i] = token
					return err
				})
			}
			close(start)
			require.NoError(t, g.Wait())

			// Assert
			assert.NotEqual(t, tokens[0].Outcome, tokens[1].Outcome, "round %d", round)
		}
	})

	t.Run("should grant both aircraft a pair when two are free", func(t *testing.T) {
		for round := range 20 {
			// Arrange
			var (
				sut    = newTestAirport(t, []string{"r_0", "r_1"}, []string{"p_0", "p_1"})
				tokens [2]LandingToken
				start  = make(chan struct{})
				g      errgroup.Group
			)

			// Act
			for i := range tokens {
				g.Go(func() error {
					<-start
					for range 10 {
						var token, err = sut.RequestLanding(fmt.Sprintf("Aircraft %d", i))
						if err != nil {
							return err
						}
						tokens[i] = token
						if token.Outcome == Proceed {
							return nil
						}
						time.Sleep(time.Millisecond)
					}
					return nil
				})
			}
			close(start)
			require.NoError(t, g.Wait())

			// Assert
			assert.Equal(t, Proceed, tokens[0].Outcome, "round %d", round)
			assert.Equal(t, Proceed, tokens[1].Outcome, "round %d", round)
			assert.NotEqual(t, tokens[0].RunwayID, tokens[1].RunwayID, "round %d", round)
			assert.NotEqual(t, tokens[0].ParkingStandID, tokens[1].ParkingStandID, "round %d", round)
		}
	})

	t.Run("should never hand the same resource to two outstanding tokens", func(t *testing.T) {
		// Arrange
		var (
			sut      = newTestAirport(t, []string{"r_0", "r_1"}, []string{"p_0", "p_1", "p_2"}, WithOperationDuration(time.Hour))
			mu       sync.Mutex
			runways  = make(map[string]string)
			stands   = make(map[string]string)
			conflict []string
			g        errgroup.Group
		)

		// Act
		for i := range 16 {
			g.Go(func() error {
				var aircraftID = fmt.Sprintf("Aircraft %d", i)
				var token LandingToken
				for range 5 {
					var err error
					if token, err = sut.RequestLanding(aircraftID); err != nil {
						return err
					}
					if token.Outcome == Proceed {
						break
					}
					time.Sleep(time.Millisecond)
				}
				if token.Outcome == Hold {
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				if owner, taken := runways[token.RunwayID]; taken {
					conflict = append(conflict, fmt.Sprintf("%s and %s share %s", owner, aircraftID, token.RunwayID))
				}
				if owner, taken := stands[token.ParkingStandID]; taken {
					conflict = append(conflict, fmt.Sprintf("%s and %s share %s", owner, aircraftID, token.ParkingStandID))
				}
				runways[token.RunwayID] = aircraftID
				stands[token.ParkingStandID] = aircraftID
				return nil
			})
		}
		require.NoError(t, g.Wait())

		// Assert
		assert.Empty(t, conflict)
		assert.Len(t, runways, 2, "both runways should be reserved")
		assert.Equal(t, 2, sut.PendingReservations())
	})

	t.Run("should land and take off many aircraft without deadlock", func(t *testing.T) {
		// Arrange
		var (
			runwayIDs = []string{"r_0", "r_1", "r_2"}
			standIDs  = []string{"p_0", "p_1", "p_2", "p_3", "p_4", "p_5", "p_6", "p_7"}
			sut       = newTestAirport(t, runwayIDs, standIDs, WithOperationDuration(10*time.Millisecond))
			g         errgroup.Group
		)

		// Act
		for i := range 8 {
			g.Go(func() error {
				return fly(sut, fmt.Sprintf("Aircraft %d", i))
			})
		}
		require.NoError(t, g.Wait())

		// Assert
		assert.Eventually(t, func() bool { return sut.PendingCompletions() == 0 }, waitFor, tick)
		for _, id := range runwayIDs {
			assert.Equal(t, RunwayAvailable, mustRunway(t, sut, id).State(), id)
		}
		for _, id := range standIDs {
			assert.Equal(t, ParkingStandAvailable, mustParkingStand(t, sut, id).State(), id)
		}
		for i := range 8 {
			_, parked := sut.ParkedAt(fmt.Sprintf("Aircraft %d", i))
			assert.False(t, parked)
		}
	})
}

// fly lands an aircraft, waits until it is parked, then takes it off again.
func fly(a *Airport, aircraftID string) error {
	const attempts = 200

	var landed bool
	for range attempts {
		var token, err = a.RequestLanding(aircraftID)
		if err != nil {
			return err
		}
		if token.Outcome == Hold {
			time.Sleep(2 * time.Millisecond)
			continue
		}
		if err := a.PerformLanding(token); err != nil {
			return err
		}
		landed = true
		break
	}
	if !landed {
		return fmt.Errorf("%s never got a landing slot", aircraftID)
	}

	for range attempts {
		var token, err = a.RequestTakeoff(aircraftID)
		if err != nil {
			// Still landing.
			time.Sleep(2 * time.Millisecond)
			continue
		}
		if token.Outcome == Hold {
			time.Sleep(2 * time.Millisecond)
			continue
		}
		if err := a.PerformTakeoff(token); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("%s never got a takeoff slot", aircraftID)
}
