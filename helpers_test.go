package airport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testOperationDuration = 50 * time.Millisecond
	testTokenValidity     = time.Second
	waitFor               = 2 * time.Second
	tick                  = 5 * time.Millisecond
)

// newTestAirport builds an airport with fast timings and closes it when the test ends.
func newTestAirport(t *testing.T, runways, stands []string, opts ...Option) *Airport {
	t.Helper()

	var defaults = []Option{
		WithTokenValidity(testTokenValidity),
		WithOperationDuration(testOperationDuration),
	}
	var sut = NewAirport("test_airport", append(defaults, opts...)...)

	for _, id := range runways {
		require.NoError(t, sut.AddRunway(id))
	}
	for _, id := range stands {
		require.NoError(t, sut.AddParkingStand(id))
	}

	t.Cleanup(func() {
		var ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sut.Close(ctx)
	})

	return sut
}

// mustRunway returns a runway that the test knows exists.
func mustRunway(t *testing.T, a *Airport, id string) *Runway {
	t.Helper()
	var runway, ok = a.Runway(id)
	require.True(t, ok, "runway %s should exist", id)
	return runway
}

// mustParkingStand returns a parking stand that the test knows exists.
func mustParkingStand(t *testing.T, a *Airport, id string) *ParkingStand {
	t.Helper()
	var stand, ok = a.ParkingStand(id)
	require.True(t, ok, "parking stand %s should exist", id)
	return stand
}

// land requests and performs a landing, then waits until the aircraft is parked
// and the completion task has finished.
func land(t *testing.T, a *Airport, aircraftID string) LandingToken {
	t.Helper()

	var token, err = a.RequestLanding(aircraftID)
	require.NoError(t, err)
	require.Equal(t, Proceed, token.Outcome)
	require.NoError(t, a.PerformLanding(token))

	require.Eventually(t, func() bool {
		_, parked := a.ParkedAt(aircraftID)
		return parked && a.PendingCompletions() == 0
	}, waitFor, tick, "%s should be parked", aircraftID)

	return token
}

// recordingJournal keeps every movement in memory.
type recordingJournal struct {
	mu        sync.Mutex
	movements []Movement
	err       error
}

func (j *recordingJournal) RecordMovement(_ context.Context, movement Movement) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.movements = append(j.movements, movement)
	return j.err
}

func (j *recordingJournal) Movements() []Movement {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Movement(nil), j.movements...)
}
