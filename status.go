package airport

import (
	"fmt"
	"sort"
	"strings"
)

// String returns a visual representation of the airport state.
func (a *Airport) String() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	// stand id -> aircraft id
	var occupants = make(map[string]string)
	a.parkedMu.Lock()
	for aircraftID, stand := range a.parked {
		occupants[stand.id] = aircraftID
	}
	var parkedCount = len(a.parked)
	a.parkedMu.Unlock()

	var b strings.Builder

	b.WriteString(fmt.Sprintf("Airport: %s\n", a.airportID))
	b.WriteString(fmt.Sprintf("Runways: %d | Parking Stands: %d | Parked: %d\n",
		len(a.runways), len(a.parkingStands), parkedCount))
	b.WriteString(fmt.Sprintf("Reservations: %d | In Operation: %d\n",
		a.reservations.len(), a.completions.len()))

	if len(a.runways) == 0 && len(a.parkingStands) == 0 {
		b.WriteString("\n[Empty Airport]\n")
		return b.String()
	}

	b.WriteString("\nRunways:\n")
	b.WriteString("┌─────────────────────────────────────────────┐\n")
	for _, runway := range a.runways {
		var state = runway.State()
		b.WriteString(fmt.Sprintf("│ %s %-15s  %-15s\n", runwayMarker(state), runway.id, state))
	}
	b.WriteString("└─────────────────────────────────────────────┘\n")

	b.WriteString("\nParking Stands:\n")
	b.WriteString("┌─────────────────────────────────────────────┐\n")
	for _, stand := range a.parkingStands {
		var state = stand.State()
		b.WriteString(fmt.Sprintf("│ %s %-15s  %-15s  %s\n",
			standMarker(state), stand.id, state, occupants[stand.id]))
	}
	b.WriteString("└─────────────────────────────────────────────┘\n")

	if parkedCount > 0 {
		var aircraft = make([]string, 0, parkedCount)
		for standID, aircraftID := range occupants {
			aircraft = append(aircraft, fmt.Sprintf("%s @ %s", aircraftID, standID))
		}
		sort.Strings(aircraft)

		b.WriteString("\nParked Aircraft:\n")
		for _, entry := range aircraft {
			b.WriteString(fmt.Sprintf("  ● %s\n", entry))
		}
	}

	return b.String()
}

func runwayMarker(state RunwayState) string {
	switch state {
	case RunwayInOperation:
		return "✈"
	case RunwayReserved:
		return "◐"
	default:
		return " "
	}
}

func standMarker(state ParkingStandState) string {
	switch state {
	case ParkingStandOccupied:
		return "●"
	case ParkingStandReserved:
		return "◐"
	default:
		return " "
	}
}
