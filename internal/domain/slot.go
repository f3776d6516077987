package domain

import "github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"

// AvailableSlot represents a candidate start time at which the requested
// bundle of services fits before closing, avoids breaks and does not
// overlap existing bookings.
type AvailableSlot struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
}
