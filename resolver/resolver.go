package resolver

import (
	"fmt"
	"strings"

	"github.com/baetyl/baetyl-go/v2/errors"
	"go.uber.org/atomic"
)

const (
	schemeHTTP  = "http://"
	schemeHTTPS = "https://"
)

// ErrInvalidKeyInput is returned when the apiKeys url of the autoconfiguration
// service is requested without a non-empty key list
var ErrInvalidKeyInput = errors.New("invalid key input")

// Resolver builds the default urls of the geoportal web services.
// Urls are composed as <protocol>://wxs.ign.fr/<key><path>; keys are neither
// validated nor escaped.
type Resolver struct {
	ssl   *atomic.Bool
	probe HostProbe
}

// New creates a resolver. A nil probe behaves as NoHost.
func New(ssl bool, probe HostProbe) *Resolver {
	if probe == nil {
		probe = NoHost()
	}
	return &Resolver{
		ssl:   atomic.NewBool(ssl),
		probe: probe,
	}
}

// SetSSL sets the https preference, ignored when running inside a page
func (r *Resolver) SetSSL(ssl bool) {
	r.ssl.Store(ssl)
}

// SSL returns the https preference
func (r *Resolver) SSL() bool {
	return r.ssl.Load()
}

// Protocol returns the protocol prefix used by composed urls
func (r *Resolver) Protocol() string {
	if scheme, ok := r.probe.PageProtocol(); ok {
		if isHTTPS(scheme) {
			return schemeHTTPS
		}
		return schemeHTTP
	}
	if r.ssl.Load() {
		return schemeHTTPS
	}
	return schemeHTTP
}

// URL composes the base url of key with path
func (r *Resolver) URL(key, path string) string {
	return r.Protocol() + Hostname + "/" + key + path
}

// Alti returns the elevation service urls
func (r *Resolver) Alti(key string) URLs {
	return r.variants(Alti, key)
}

// IsoCurve returns the isocurve service urls
func (r *Resolver) IsoCurve(key string) URLs {
	return r.variants(IsoCurve, key)
}

// AutoComplete returns the autocompletion service url
func (r *Resolver) AutoComplete(key string) string {
	return r.URL(key, paths[AutoComplete][Default])
}

// ReverseGeocode returns the reverse geocoding service url
func (r *Resolver) ReverseGeocode(key string) string {
	return r.URL(key, paths[ReverseGeocode][Default])
}

// Geocode returns the geocoding service url
func (r *Resolver) Geocode(key string) string {
	return r.URL(key, paths[Geocode][Default])
}

// Route returns the routing service urls
func (r *Resolver) Route(key string) URLs {
	return r.variants(Route, key)
}

// AutoConf returns the autoconfiguration service urls.
//
// The apiKey and aggregate urls take the key argument as is: a list is
// inserted comma joined. The apiKeys url takes the first key of the list as
// path key and the whole list as query. When keys is not a non-empty list the
// apiKeys url is left out and an error wrapping ErrInvalidKeyInput is
// returned along with the two other urls.
func (r *Resolver) AutoConf(keys Keys) (URLs, error) {
	urls := URLs{
		APIKey:    r.URL(keys.String(), paths[AutoConf][APIKey]),
		Aggregate: r.URL(keys.String(), paths[AutoConf][Aggregate]),
	}
	if !keys.IsList() {
		return urls, errors.Trace(fmt.Errorf("%w: %s requires a key list", ErrInvalidKeyInput, APIKeys))
	}
	if keys.Len() == 0 {
		return urls, errors.Trace(fmt.Errorf("%w: %s requires at least one key", ErrInvalidKeyInput, APIKeys))
	}
	urls[APIKeys] = strings.Replace(r.URL(keys.First(), paths[AutoConf][APIKeys]), keysPlaceholder, keys.String(), 1)
	return urls, nil
}

// Resolve returns the urls of any service. Single path services return their
// url under the Default variant.
func (r *Resolver) Resolve(s Service, keys Keys) (URLs, error) {
	switch s {
	case AutoConf:
		return r.AutoConf(keys)
	case Alti, IsoCurve, Route, AutoComplete, ReverseGeocode, Geocode:
		return r.variants(s, keys.String()), nil
	default:
		return nil, errors.Trace(fmt.Errorf("%w: %q", ErrUnknownService, string(s)))
	}
}

func (r *Resolver) variants(s Service, key string) URLs {
	urls := make(URLs, len(paths[s]))
	for v, p := range paths[s] {
		urls[v] = r.URL(key, p)
	}
	return urls
}
