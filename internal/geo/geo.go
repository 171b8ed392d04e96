// Package geo resolves client IP addresses to coarse locations using a
// MaxMind GeoIP2/GeoLite2 City database.
package geo

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// ErrInvalidIP is returned for strings that are not IP addresses.
var ErrInvalidIP = errors.New("invalid ip address")

// Location is the result of a lookup. Empty fields are unknown.
type Location struct {
	Country string // ISO 3166-1 alpha-2 code
	Region  string
	City    string
}

// Locator looks up the location of an IP address.
type Locator interface {
	Lookup(ip string) (Location, error)
}

// Reader is a Locator backed by a .mmdb file.
type Reader struct {
	db *geoip2.Reader
}

// Open memory-maps the database at path.
func Open(path string) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &Reader{db: db}, nil
}

// Lookup returns the country, first subdivision and city of ip.
func (r *Reader) Lookup(ip string) (Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}, ErrInvalidIP
	}

	record, err := r.db.City(parsed)
	if err != nil {
		return Location{}, fmt.Errorf("geoip lookup: %w", err)
	}

	loc := Location{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	return loc, nil
}

// Close releases the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Nop is used when no database is configured.
type Nop struct{}

// Lookup always returns an empty location.
func (Nop) Lookup(string) (Location, error) {
	return Location{}, nil
}
