package airport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "go-airport"

// Airport allocates runways and parking stands to landing and departing aircraft.
type Airport struct {
	mu                sync.RWMutex // guards the inventories and their indices
	runways           []*Runway    // Scan order is insertion order
	parkingStands     []*ParkingStand
	runwayIndex       map[string]*Runway
	parkingStandIndex map[string]*ParkingStand

	parkedMu sync.Mutex
	parked   map[string]*ParkingStand // aircraft id -> stand, written only by completion tasks

	reservations *reservations
	completions  *completions

	airportID string
	options   options
	closed    atomic.Bool
	workerCtx context.Context
	cancel    context.CancelFunc
	reaper    sync.WaitGroup
}

// NewAirport creates an Airport with no runways or parking stands.
// The returned Airport runs a background reaper until Close is called.
func NewAirport(airportID string, opts ...Option) *Airport {
	var options = defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var a = &Airport{
		runways:           make([]*Runway, 0),
		parkingStands:     make([]*ParkingStand, 0),
		runwayIndex:       make(map[string]*Runway),
		parkingStandIndex: make(map[string]*ParkingStand),
		parked:            make(map[string]*ParkingStand),
		reservations:      newReservations(),
		completions:       newCompletions(),
		airportID:         airportID,
		options:           options,
	}
	a.workerCtx, a.cancel = context.WithCancel(context.Background())

	if options.reapInterval > 0 {
		a.reaper.Add(1)
		go func() {
			defer a.reaper.Done()
			a.reapExpiredWorker(a.workerCtx)
		}()
	}

	return a
}

// AddRunway adds an Available runway at the end of the scan order.
func (a *Airport) AddRunway(id string) error {
	if id == "" {
		return fmt.Errorf("failed to add runway: %w", ErrInvalidResourceID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.runwayIndex[id]; exists {
		return fmt.Errorf("failed to add runway %q: %w", id, ErrDuplicateResource)
	}

	var runway = newRunway(id)
	a.runways = append(a.runways, runway)
	a.runwayIndex[id] = runway
	return nil
}

// AddParkingStand adds an Available parking stand at the end of the scan order.
func (a *Airport) AddParkingStand(id string) error {
	if id == "" {
		return fmt.Errorf("failed to add parking stand: %w", ErrInvalidResourceID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.parkingStandIndex[id]; exists {
		return fmt.Errorf("failed to add parking stand %q: %w", id, ErrDuplicateResource)
	}

	var stand = newParkingStand(id)
	a.parkingStands = append(a.parkingStands, stand)
	a.parkingStandIndex[id] = stand
	return nil
}

// RequestLanding reserves the first free (runway, parking stand) pair, scanning
// stands in insertion order and runways within each stand. It returns a Hold
// token when no pair could be reserved.
func (a *Airport) RequestLanding(aircraftID string) (token LandingToken, err error) {
	var _, span = a.startSpan("airport.RequestLanding", aircraftID)
	defer func() { endSpan(span, err, token.Outcome) }()

	if a.closed.Load() {
		return LandingToken{}, fmt.Errorf("failed to request landing for %q: %w", aircraftID, ErrAirportClosed)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, stand := range a.parkingStands {
		for _, runway := range a.runways {
			if !reserveLanding(runway, stand) {
				continue
			}

			token = newLandingToken(aircraftID, runway.id, stand.id, a.options.tokenValidity)
			a.reservations.add(&reservation{
				tokenID:    token.ID,
				kind:       MovementLanding,
				aircraftID: aircraftID,
				runway:     runway,
				stand:      stand,
				expiresAt:  token.ExpiresAt,
			})

			a.options.logger.Info("landing reserved",
				"aircraft_id", aircraftID,
				"runway_id", runway.id,
				"parking_stand_id", stand.id,
				"token_id", token.ID,
				"expires_at", token.ExpiresAt)
			return token, nil
		}
	}

	a.options.logger.Debug("landing on hold", "aircraft_id", aircraftID)
	return LandingToken{Outcome: Hold}, nil
}

// RequestTakeoff reserves a runway for an aircraft parked at this airport,
// scanning runways in insertion order. It returns a Hold token when no runway
// could be reserved and ErrUnknownAircraft when the aircraft is not parked here.
func (a *Airport) RequestTakeoff(aircraftID string) (token TakeoffToken, err error) {
	var _, span = a.startSpan("airport.RequestTakeoff", aircraftID)
	defer func() { endSpan(span, err, token.Outcome) }()

	if a.closed.Load() {
		return TakeoffToken{}, fmt.Errorf("failed to request takeoff for %q: %w", aircraftID, ErrAirportClosed)
	}

	var stand, parked = a.parkedStand(aircraftID)
	if !parked {
		return TakeoffToken{}, fmt.Errorf("failed to request takeoff for %q: %w", aircraftID, ErrUnknownAircraft)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, runway := range a.runways {
		if !reserveTakeoff(runway, stand) {
			continue
		}

		token = newTakeoffToken(aircraftID, runway.id, a.options.tokenValidity)
		a.reservations.add(&reservation{
			tokenID:    token.ID,
			kind:       MovementTakeoff,
			aircraftID: aircraftID,
			runway:     runway,
			stand:      stand,
			expiresAt:  token.ExpiresAt,
		})

		a.options.logger.Info("takeoff reserved",
			"aircraft_id", aircraftID,
			"runway_id", runway.id,
			"parking_stand_id", stand.id,
			"token_id", token.ID,
			"expires_at", token.ExpiresAt)
		return token, nil
	}

	a.options.logger.Debug("takeoff on hold", "aircraft_id", aircraftID)
	return TakeoffToken{Outcome: Hold}, nil
}

// PerformLanding starts the landing authorized by token and returns without
// waiting for it. After the operation duration the aircraft is parked, the stand
// is Occupied and the runway is Available again.
//
// An expired token fails with ErrTokenExpired after its resources were released.
func (a *Airport) PerformLanding(token LandingToken) (err error) {
	var ctx, span = a.startSpan("airport.PerformLanding", token.AircraftID)
	defer func() { endSpan(span, err, token.Outcome) }()

	if token.Outcome != Proceed {
		return fmt.Errorf("failed to perform landing for %q: hold token: %w", token.AircraftID, ErrInvalidToken)
	}

	var (
		runway *Runway
		stand  *ParkingStand
	)
	if runway, err = a.lookupRunway(token.RunwayID); err != nil {
		return fmt.Errorf("failed to perform landing for %q: %w", token.AircraftID, err)
	}
	if stand, err = a.lookupParkingStand(token.ParkingStandID); err != nil {
		return fmt.Errorf("failed to perform landing for %q: %w", token.AircraftID, err)
	}

	var res *reservation
	if res, err = a.claim(token.ID, MovementLanding, token.AircraftID, runway, stand, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to perform landing for %q: %w", token.AircraftID, err)
	}

	if err = a.start(ctx, res); err != nil {
		return fmt.Errorf("failed to perform landing for %q: %w", token.AircraftID, err)
	}

	return nil
}

// PerformTakeoff starts the takeoff authorized by token and returns without
// waiting for it. After the operation duration the aircraft is no longer parked
// and both the runway and the stand are Available.
//
// An expired token fails with ErrTokenExpired; the aircraft stays parked.
func (a *Airport) PerformTakeoff(token TakeoffToken) (err error) {
	var ctx, span = a.startSpan("airport.PerformTakeoff", token.AircraftID)
	defer func() { endSpan(span, err, token.Outcome) }()

	if token.Outcome != Proceed {
		return fmt.Errorf("failed to perform takeoff for %q: hold token: %w", token.AircraftID, ErrInvalidToken)
	}

	var runway *Runway
	if runway, err = a.lookupRunway(token.RunwayID); err != nil {
		return fmt.Errorf("failed to perform takeoff for %q: %w", token.AircraftID, err)
	}

	var stand, parked = a.parkedStand(token.AircraftID)
	if !parked {
		return fmt.Errorf("failed to perform takeoff for %q: %w", token.AircraftID, ErrUnknownAircraft)
	}

	var res *reservation
	if res, err = a.claim(token.ID, MovementTakeoff, token.AircraftID, runway, stand, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to perform takeoff for %q: %w", token.AircraftID, err)
	}

	if err = a.start(ctx, res); err != nil {
		return fmt.Errorf("failed to perform takeoff for %q: %w", token.AircraftID, err)
	}

	return nil
}

// Close stops accepting requests and blocks until every scheduled completion
// task has finished or ctx is done. Reservations that were never performed are
// left as they are.
func (a *Airport) Close(ctx context.Context) error {
	a.closed.Store(true)
	a.completions.close()

	var err = a.completions.wait(ctx)

	a.cancel()
	a.reaper.Wait()

	if err != nil {
		return fmt.Errorf("failed to close airport %q: %w", a.airportID, err)
	}

	a.options.logger.Info("airport closed", "airport_id", a.airportID)
	return nil
}

// Runway returns the runway with the given id.
func (a *Airport) Runway(id string) (*Runway, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var runway, ok = a.runwayIndex[id]
	return runway, ok
}

// ParkingStand returns the parking stand with the given id.
func (a *Airport) ParkingStand(id string) (*ParkingStand, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var stand, ok = a.parkingStandIndex[id]
	return stand, ok
}

// ParkedAt returns the id of the stand the aircraft is parked at.
func (a *Airport) ParkedAt(aircraftID string) (string, bool) {
	var stand, ok = a.parkedStand(aircraftID)
	if !ok {
		return "", false
	}
	return stand.id, true
}

// PendingCompletions returns the number of landings and takeoffs still in operation.
func (a *Airport) PendingCompletions() int {
	return a.completions.len()
}

// PendingReservations returns the number of issued tokens not yet performed or reclaimed.
func (a *Airport) PendingReservations() int {
	return a.reservations.len()
}

func (a *Airport) parkedStand(aircraftID string) (*ParkingStand, bool) {
	a.parkedMu.Lock()
	defer a.parkedMu.Unlock()
	var stand, ok = a.parked[aircraftID]
	return stand, ok
}

func (a *Airport) lookupRunway(id string) (*Runway, error) {
	var runway, ok = a.Runway(id)
	if !ok {
		return nil, fmt.Errorf("runway %q: %w", id, ErrUnknownRunway)
	}
	return runway, nil
}

func (a *Airport) lookupParkingStand(id string) (*ParkingStand, error) {
	var stand, ok = a.ParkingStand(id)
	if !ok {
		return nil, fmt.Errorf("parking stand %q: %w", id, ErrUnknownParkingStand)
	}
	return stand, nil
}

// claim takes the reservation behind a token out of the registry and checks its
// expiry before anything else. An expired reservation is rolled back here.
func (a *Airport) claim(tokenID string, kind MovementKind, aircraftID string, runway *Runway, stand *ParkingStand, expiresAt time.Time) (*reservation, error) {
	var now = time.Now()

	var res, ok = a.reservations.take(tokenID)
	if !ok {
		// Already reclaimed by the reaper, or never issued here.
		if isExpired(expiresAt, now) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if res.kind != kind || res.aircraftID != aircraftID || res.runway != runway || res.stand != stand {
		a.reservations.add(res)
		return nil, fmt.Errorf("token %s does not match its reservation: %w", tokenID, ErrInvalidToken)
	}

	if isExpired(res.expiresAt, now) {
		a.expire(res)
		return nil, ErrTokenExpired
	}

	return res, nil
}

// start moves the runway to InOperation and schedules the completion task.
func (a *Airport) start(ctx context.Context, res *reservation) error {
	var done, err = a.completions.add(res.tokenID)
	if err != nil {
		res.rollback()
		return err
	}

	res.runway.setState(RunwayInOperation)

	a.options.logger.Info(fmt.Sprintf("%s started", res.kind),
		"aircraft_id", res.aircraftID,
		"runway_id", res.runway.id,
		"parking_stand_id", res.stand.id,
		"token_id", res.tokenID)

	var link = trace.LinkFromContext(ctx)
	go func() {
		defer done()

		var timer = time.NewTimer(a.options.operationDuration)
		defer timer.Stop()
		<-timer.C

		if res.kind == MovementLanding {
			a.completeLanding(res, link)
		} else {
			a.completeTakeoff(res, link)
		}
	}()

	return nil
}

func (a *Airport) completeLanding(res *reservation, link trace.Link) {
	var ctx, span = a.options.tracer.Start(a.workerCtx, "airport.completeLanding", trace.WithLinks(link))
	defer span.End()

	a.parkedMu.Lock()
	a.parked[res.aircraftID] = res.stand
	a.parkedMu.Unlock()

	res.runway.setState(RunwayAvailable)
	res.stand.setState(ParkingStandOccupied)
	res.runway.guard.Unlock()
	res.stand.guard.Unlock()

	a.options.logger.Info("landing completed",
		"aircraft_id", res.aircraftID,
		"runway_id", res.runway.id,
		"parking_stand_id", res.stand.id)
	a.record(ctx, res, MovementCompleted)
}

func (a *Airport) completeTakeoff(res *reservation, link trace.Link) {
	var ctx, span = a.options.tracer.Start(a.workerCtx, "airport.completeTakeoff", trace.WithLinks(link))
	defer span.End()

	a.parkedMu.Lock()
	delete(a.parked, res.aircraftID)
	a.parkedMu.Unlock()

	res.runway.setState(RunwayAvailable)
	res.runway.guard.Unlock()
	res.stand.setState(ParkingStandAvailable)
	res.stand.guard.Unlock()

	a.options.logger.Info("takeoff completed",
		"aircraft_id", res.aircraftID,
		"runway_id", res.runway.id,
		"parking_stand_id", res.stand.id)
	a.record(ctx, res, MovementCompleted)
}

// expire releases a reservation whose token ran out before it was performed.
func (a *Airport) expire(res *reservation) {
	res.rollback()

	a.options.logger.Warn(fmt.Sprintf("%s token expired", res.kind),
		"aircraft_id", res.aircraftID,
		"runway_id", res.runway.id,
		"parking_stand_id", res.stand.id,
		"token_id", res.tokenID)
	a.record(a.workerCtx, res, MovementExpired)
}

func (a *Airport) record(ctx context.Context, res *reservation, outcome MovementOutcome) {
	var movement = Movement{
		TokenID:        res.tokenID,
		AirportID:      a.airportID,
		AircraftID:     res.aircraftID,
		Kind:           res.kind,
		Outcome:        outcome,
		RunwayID:       res.runway.id,
		ParkingStandID: res.stand.id,
		RecordedAt:     time.Now(),
	}

	if err := a.options.journal.RecordMovement(ctx, movement); err != nil {
		a.options.logger.Error("failed to record movement",
			"aircraft_id", res.aircraftID,
			"token_id", res.tokenID,
			"error", err)
	}
}

func (a *Airport) startSpan(name, aircraftID string) (context.Context, trace.Span) {
	return a.options.tracer.Start(context.Background(), name,
		trace.WithAttributes(
			attribute.String("airport.id", a.airportID),
			attribute.String("aircraft.id", aircraftID),
		))
}

func endSpan(span trace.Span, err error, outcome Outcome) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("token.outcome", outcome.String()))
	}
	span.End()
}
