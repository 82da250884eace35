package weather

import (
	"context"
)

// Provider abstracts the remote weather data source (e.g. OpenWeatherMap).
//
// Fetch performs exactly one outbound query for the city. It returns
// ErrNotFound (possibly wrapped) for a non-success status and a
// *TransportError for network or payload faults.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (Snapshot, error)
}
