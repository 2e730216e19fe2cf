package enrich

import (
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// GeoLocation is the location and AS data for one IP address. All
// fields are optional; a lookup miss leaves every field nil.
type GeoLocation struct {
	Country   *string
	Continent *string
	ASN       *string
	ASName    *string
	ASDomain  *string
}

// ipinfoRecord matches the IPinfo Lite MMDB schema
// (https://ipinfo.io/dashboard/downloads). Unlike MaxMind's own City
// and ASN databases, every field here is a flat string, including the
// ASN ("AS13335").
type ipinfoRecord struct {
	Continent string `maxminddb:"continent"`
	Country   string `maxminddb:"country"`
	ASN       string `maxminddb:"asn"`
	ASName    string `maxminddb:"as_name"`
	ASDomain  string `maxminddb:"as_domain"`
}

// MMDBLocator resolves IPs against an IPinfo Lite style MMDB file.
type MMDBLocator struct {
	reader *maxminddb.Reader
}

// OpenMMDB opens the geolocation database at path.
func OpenMMDB(path string) (*MMDBLocator, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geolocation database %s: %w", path, err)
	}
	return &MMDBLocator{reader: reader}, nil
}

// Close releases the underlying database mapping.
func (l *MMDBLocator) Close() error {
	return l.reader.Close()
}

// Locate looks up ip in the database. Geolocation is best-effort
// enrichment: an unparsable address, an address outside the database,
// or a record that does not decode all yield an all-absent location.
func (l *MMDBLocator) Locate(ip string) GeoLocation {
	var geo GeoLocation

	addr := net.ParseIP(ip)
	if addr == nil {
		return geo
	}

	var record ipinfoRecord
	if err := l.reader.Lookup(addr, &record); err != nil {
		return geo
	}

	geo.Country = optional(record.Country)
	geo.Continent = optional(record.Continent)
	geo.ASN = optional(record.ASN)
	geo.ASName = optional(record.ASName)
	geo.ASDomain = optional(record.ASDomain)
	return geo
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
