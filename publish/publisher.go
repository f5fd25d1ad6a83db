package publish

import (
	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/log"
	"go.uber.org/multierr"

	"github.com/baetyl/baetyl-geoportal/v2/catalog"
	"github.com/baetyl/baetyl-geoportal/v2/client"
	"github.com/baetyl/baetyl-geoportal/v2/config"
)

// Factory creates the client of a target
type Factory func(info config.TargetInfo) (client.Client, error)

// Publisher distributes catalogs to every configured target
type Publisher struct {
	clients map[string]client.Client // key: target name
	names   []string
	logger  *log.Logger
}

// NewPublisher creates and starts one client per target
func NewPublisher(targets []config.TargetInfo, factory Factory) (*Publisher, error) {
	if factory == nil {
		factory = client.NewClient
	}
	p := &Publisher{
		clients: make(map[string]client.Client),
		logger:  log.With(log.Any("publish", "catalog")),
	}
	for _, v := range targets {
		if _, ok := p.clients[v.Name]; ok {
			p.Close()
			return nil, errors.Errorf("duplicate target (%s)", v.Name)
		}
		cli, err := factory(v)
		if err != nil {
			p.Close()
			return nil, errors.Trace(err)
		}
		p.clients[v.Name] = cli
		p.names = append(p.names, v.Name)
	}
	for _, name := range p.names {
		if err := p.clients[name].Start(); err != nil {
			p.Close()
			return nil, errors.Trace(err)
		}
		p.logger.Debug("target started", log.Any("target", name))
	}
	return p, nil
}

// Publish sends the catalog to all targets, a failing target does not stop the others
func (p *Publisher) Publish(c *catalog.Catalog) error {
	data, err := c.Marshal()
	if err != nil {
		return errors.Trace(err)
	}
	var errs error
	for _, name := range p.names {
		if err := p.clients[name].SendOrDrop(data); err != nil {
			p.logger.Error("failed to publish catalog", log.Any("target", name), log.Error(err))
			errs = multierr.Append(errs, errors.Errorf("target (%s): %s", name, err.Error()))
		}
	}
	return errs
}

// Targets returns the target names in configuration order
func (p *Publisher) Targets() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *Publisher) Close() {
	for _, name := range p.names {
		if err := p.clients[name].Close(); err != nil {
			p.logger.Warn("failed to close target", log.Any("target", name), log.Error(err))
		}
	}
}
