// Package enrich provides the run-scoped enrichment services: user
// agent decomposition and IP geolocation, each behind a memoizing
// cache keyed by the raw input string.
package enrich

import "strings"

// spiderDevice is forced for the "Mozlila" typosquatted bot signature,
// which generic UA regexes classify as a regular browser.
// See https://trunc.org/learning/the-mozlila-user-agent-bot
const spiderDevice = "Spider"

// AgentDecomposer turns a raw user-agent string into its browser, OS
// and device components. Unrecognized components are left nil.
type AgentDecomposer interface {
	Decompose(userAgent string) Agent
}

// GeoLocator resolves an IP address to its location and AS data. A
// lookup miss yields an all-absent GeoLocation, never an error.
type GeoLocator interface {
	Locate(ip string) GeoLocation
}

// Services owns the two enrichment caches for one ingestion run. Both
// caches grow without bound and are never evicted: a run is a bounded
// batch, and the distinct user agents and IPs in one log file are few
// relative to its lines.
//
// Services is not safe for concurrent use. The pipeline driver owns it
// and hands it to one parse call at a time.
type Services struct {
	agents AgentDecomposer
	geo    GeoLocator

	agentCache map[string]*Agent
	geoCache   map[string]*GeoLocation
}

// NewServices builds the enrichment services. Either dependency may be
// nil, in which case the corresponding enrichment degrades to
// all-absent values.
func NewServices(agents AgentDecomposer, geo GeoLocator) *Services {
	return &Services{
		agents:     agents,
		geo:        geo,
		agentCache: make(map[string]*Agent),
		geoCache:   make(map[string]*GeoLocation),
	}
}

// GetAgent returns the decomposition of userAgent, invoking the
// decomposer once per distinct raw string for the lifetime of the run.
// The returned pointer stays valid and unchanged for the whole run.
func (s *Services) GetAgent(userAgent string) *Agent {
	if agent, ok := s.agentCache[userAgent]; ok {
		return agent
	}

	var agent Agent
	if s.agents != nil {
		agent = s.agents.Decompose(userAgent)
	}
	if strings.Contains(userAgent, "Mozlila") {
		device := spiderDevice
		agent.Device = &device
	}

	s.agentCache[userAgent] = &agent
	return &agent
}

// GetGeolocation returns the location of ip (its canonical string
// form), invoking the locator once per distinct address for the run.
func (s *Services) GetGeolocation(ip string) *GeoLocation {
	if geo, ok := s.geoCache[ip]; ok {
		return geo
	}

	var geo GeoLocation
	if s.geo != nil {
		geo = s.geo.Locate(ip)
	}

	s.geoCache[ip] = &geo
	return &geo
}
