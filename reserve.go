package airport

import (
	"sync"
	"time"
)

// tryLockPair acquires both guards without blocking, or neither.
func tryLockPair(a, b *sync.Mutex) bool {
	if !a.TryLock() {
		return false
	}
	if !b.TryLock() {
		a.Unlock()
		return false
	}
	return true
}

// reserveLanding locks the pair and moves both to Reserved if both are Available.
// On success the guards stay held until the reservation is completed or rolled back.
func reserveLanding(runway *Runway, stand *ParkingStand) bool {
	if !tryLockPair(&runway.guard, &stand.guard) {
		return false
	}

	// State may have changed between the scan and the lock.
	if stand.State() == ParkingStandAvailable && runway.State() == RunwayAvailable {
		runway.setState(RunwayReserved)
		stand.setState(ParkingStandReserved)
		return true
	}

	runway.guard.Unlock()
	stand.guard.Unlock()
	return false
}

// reserveTakeoff locks the pair for an aircraft leaving stand. The stand must be
// Occupied and is handed back as Available while its guard stays held.
func reserveTakeoff(runway *Runway, stand *ParkingStand) bool {
	if !tryLockPair(&runway.guard, &stand.guard) {
		return false
	}

	if stand.State() == ParkingStandOccupied && runway.State() == RunwayAvailable {
		runway.setState(RunwayReserved)
		stand.setState(ParkingStandAvailable)
		return true
	}

	runway.guard.Unlock()
	stand.guard.Unlock()
	return false
}

// reservation is a pair of held guards waiting for its token to be performed.
type reservation struct {
	tokenID    string
	kind       MovementKind
	aircraftID string
	runway     *Runway
	stand      *ParkingStand
	expiresAt  time.Time
}

// rollback restores the pre-reservation states and releases both guards.
// A landing frees the pair; a takeoff leaves the aircraft parked.
func (r *reservation) rollback() {
	r.runway.setState(RunwayAvailable)
	if r.kind == MovementTakeoff {
		r.stand.setState(ParkingStandOccupied)
	} else {
		r.stand.setState(ParkingStandAvailable)
	}
	r.runway.guard.Unlock()
	r.stand.guard.Unlock()
}

// reservations tracks outstanding reservations by token id. Whoever takes a
// reservation out of the registry is the only party allowed to release its guards.
type reservations struct {
	mu      sync.Mutex
	byToken map[string]*reservation
}

func newReservations() *reservations {
	return &reservations{
		byToken: make(map[string]*reservation),
	}
}

func (r *reservations) add(res *reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byToken[res.tokenID] = res
}

// take removes and returns the reservation for tokenID.
func (r *reservations) take(tokenID string) (*reservation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res, ok = r.byToken[tokenID]
	if ok {
		delete(r.byToken, tokenID)
	}
	return res, ok
}

// takeExpired removes and returns every reservation whose token expired at now.
func (r *reservations) takeExpired(now time.Time) []*reservation {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []*reservation
	for tokenID, res := range r.byToken {
		if isExpired(res.expiresAt, now) {
			expired = append(expired, res)
			delete(r.byToken, tokenID)
		}
	}
	return expired
}

func (r *reservations) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}
