package catalog

import (
	"encoding/json"
	"time"

	"github.com/baetyl/baetyl-go/v2/errors"

	"github.com/baetyl/baetyl-geoportal/v2/resolver"
)

// ErrNoKeys is returned when a catalog is built without access keys
var ErrNoKeys = errors.New("no access key configured")

// Entry urls of every service for one access key
type Entry map[resolver.Service]resolver.URLs

// Catalog default urls of the geoportal services for a set of access keys
type Catalog struct {
	Hostname string           `json:"hostname"`
	Protocol string           `json:"protocol"`
	Keys     map[string]Entry `json:"keys"`
	AutoConf resolver.URLs    `json:"autoconf"`
	Time     time.Time        `json:"time"`
}

// Build resolves every service for each key, and the autoconfiguration urls of the key list
func Build(r *resolver.Resolver, keys []string) (*Catalog, error) {
	if len(keys) == 0 {
		return nil, errors.Trace(ErrNoKeys)
	}
	c := &Catalog{
		Hostname: resolver.Hostname,
		Protocol: r.Protocol(),
		Keys:     make(map[string]Entry, len(keys)),
		Time:     time.Now().UTC(),
	}
	for _, key := range keys {
		entry := make(Entry)
		for _, s := range resolver.Services() {
			args := resolver.Key(key)
			if s == resolver.AutoConf {
				args = resolver.KeyList(key)
			}
			urls, err := r.Resolve(s, args)
			if err != nil {
				return nil, errors.Trace(err)
			}
			entry[s] = urls
		}
		c.Keys[key] = entry
	}
	urls, err := r.AutoConf(resolver.KeyList(keys...))
	if err != nil {
		return nil, errors.Trace(err)
	}
	c.AutoConf = urls
	return c, nil
}

// Marshal renders the catalog as json
func (c *Catalog) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return data, nil
}
