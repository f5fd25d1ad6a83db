package resolver

import (
	"fmt"

	"github.com/baetyl/baetyl-go/v2/errors"
)

// Hostname host of the geoportal web services
const Hostname = "wxs.ign.fr"

// Service geoportal web service
type Service string

// All services
const (
	Alti           Service = "alti"
	IsoCurve       Service = "isocurve"
	AutoComplete   Service = "autocomplete"
	ReverseGeocode Service = "reverse-geocode"
	AutoConf       Service = "autoconf"
	Geocode        Service = "geocode"
	Route          Service = "route"
)

// Variant url form of a service, distinguished by response format or access mode
type Variant string

// Default is the only variant of single path services
const Default Variant = "url"

// All variants
const (
	ElevationJSON Variant = "elevation-json"
	ElevationXML  Variant = "elevation-xml"
	ProfilJSON    Variant = "profil-json"
	ProfilXML     Variant = "profil-xml"
	WPS           Variant = "wps"

	IsoJSON Variant = "iso-json"
	IsoXML  Variant = "iso-xml"

	APIKey    Variant = "apiKey"
	APIKeys   Variant = "apiKeys"
	Aggregate Variant = "aggregate"

	OLS       Variant = "ols"
	RouteJSON Variant = "route-json"
	RouteXML  Variant = "route-xml"
)

// keysPlaceholder is replaced by the comma joined key list in the apiKeys path
const keysPlaceholder = "%KEYS%"

// ErrUnknownService is returned for names outside the service table
var ErrUnknownService = errors.New("unknown service")

var services = []Service{Alti, IsoCurve, AutoComplete, ReverseGeocode, AutoConf, Geocode, Route}

var variants = map[Service][]Variant{
	Alti:           {ElevationJSON, ElevationXML, ProfilJSON, ProfilXML, WPS},
	IsoCurve:       {IsoJSON, IsoXML},
	AutoComplete:   {Default},
	ReverseGeocode: {Default},
	AutoConf:       {APIKey, APIKeys, Aggregate},
	Geocode:        {Default},
	Route:          {OLS, RouteJSON, RouteXML},
}

var paths = map[Service]map[Variant]string{
	Alti: {
		ElevationJSON: "/alti/rest/elevation.json",
		ElevationXML:  "/alti/rest/elevation.xml",
		ProfilJSON:    "/alti/rest/elevationLine.json",
		ProfilXML:     "/alti/rest/elevationLine.xml",
		WPS:           "/alti/wps",
	},
	IsoCurve: {
		IsoJSON: "/isochrone/isochrone.json",
		IsoXML:  "/isochrone/isochrone.xml",
	},
	AutoComplete: {
		Default: "/ols/apis/completion",
	},
	ReverseGeocode: {
		Default: "/geoportail/ols",
	},
	AutoConf: {
		APIKey:    "/autoconf",
		APIKeys:   "/autoconf?keys=" + keysPlaceholder,
		Aggregate: "/autoconf/id/",
	},
	Geocode: {
		Default: "/geoportail/ols",
	},
	Route: {
		OLS:       "/itineraire/ols",
		RouteJSON: "/itineraire/rest/route.json",
		RouteXML:  "/itineraire/rest/route.xml",
	},
}

// Services returns all services in table order
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// ParseService maps a service name to its Service
func ParseService(name string) (Service, error) {
	s := Service(name)
	if _, ok := paths[s]; !ok {
		return "", errors.Trace(fmt.Errorf("%w: %q", ErrUnknownService, name))
	}
	return s, nil
}

// Variants returns the variants of the service in table order
func (s Service) Variants() []Variant {
	vs := variants[s]
	out := make([]Variant, len(vs))
	copy(out, vs)
	return out
}

// Single reports whether the service is reachable through a single path
func (s Service) Single() bool {
	vs := variants[s]
	return len(vs) == 1 && vs[0] == Default
}

// Path returns the path suffix of a service variant
func (s Service) Path(v Variant) (string, bool) {
	p, ok := paths[s][v]
	return p, ok
}

// URLs resolved urls of a service, by variant
type URLs map[Variant]string
