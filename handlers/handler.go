package handlers

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// ReverseGeocoder resolves coordinates to a display name.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// ElevationLookup resolves coordinates to terrain elevation in meters.
type ElevationLookup interface {
	Lookup(ctx context.Context, lat, lon float64) (float64, error)
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db            *bun.DB
	JWTKey        []byte
	geocoder      ReverseGeocoder
	elevation     ElevationLookup
	weatherBuffer time.Duration
}

// New creates a Handler with the given database connection, JWT signing
// key, lookup clients and DOPE weather window buffer.
func New(db *bun.DB, jwtKey []byte, geocoder ReverseGeocoder, elevation ElevationLookup, weatherBuffer time.Duration) *Handler {
	return &Handler{
		db:            db,
		JWTKey:        jwtKey,
		geocoder:      geocoder,
		elevation:     elevation,
		weatherBuffer: weatherBuffer,
	}
}
