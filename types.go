package airport

import (
	"sync"
	"sync/atomic"
)

// RunwayState is the lifecycle state of a runway.
type RunwayState int32

const (
	RunwayAvailable RunwayState = iota
	RunwayReserved
	RunwayInOperation
)

func (s RunwayState) String() string {
	switch s {
	case RunwayAvailable:
		return "available"
	case RunwayReserved:
		return "reserved"
	case RunwayInOperation:
		return "in_operation"
	default:
		return "unknown"
	}
}

// ParkingStandState is the lifecycle state of a parking stand.
type ParkingStandState int32

const (
	ParkingStandAvailable ParkingStandState = iota
	ParkingStandReserved
	ParkingStandOccupied
)

func (s ParkingStandState) String() string {
	switch s {
	case ParkingStandAvailable:
		return "available"
	case ParkingStandReserved:
		return "reserved"
	case ParkingStandOccupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// Runway is a runway owned by an Airport.
//
// The guard is held for the whole life of a reservation, from the request that
// reserved the runway until the completion task (or an expiry path) releases it.
// State is only written by the guard holder but can be read at any time.
type Runway struct {
	id    string
	guard sync.Mutex
	state atomic.Int32
}

func newRunway(id string) *Runway {
	return &Runway{id: id}
}

// ID returns the runway identifier.
func (r *Runway) ID() string {
	return r.id
}

// State returns the current runway state.
func (r *Runway) State() RunwayState {
	return RunwayState(r.state.Load())
}

// setState must be called with the guard held.
func (r *Runway) setState(state RunwayState) {
	r.state.Store(int32(state))
}

// ParkingStand is a parking stand owned by an Airport. It follows the same
// guard discipline as Runway.
type ParkingStand struct {
	id    string
	guard sync.Mutex
	state atomic.Int32
}

func newParkingStand(id string) *ParkingStand {
	return &ParkingStand{id: id}
}

// ID returns the parking stand identifier.
func (p *ParkingStand) ID() string {
	return p.id
}

// State returns the current parking stand state.
func (p *ParkingStand) State() ParkingStandState {
	return ParkingStandState(p.state.Load())
}

// setState must be called with the guard held.
func (p *ParkingStand) setState(state ParkingStandState) {
	p.state.Store(int32(state))
}
