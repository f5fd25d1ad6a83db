package main

import (
	"github.com/baetyl/baetyl-go/v2/context"
	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/log"

	"github.com/baetyl/baetyl-geoportal/v2/catalog"
	"github.com/baetyl/baetyl-geoportal/v2/config"
	"github.com/baetyl/baetyl-geoportal/v2/publish"
	"github.com/baetyl/baetyl-geoportal/v2/resolver"
	"github.com/baetyl/baetyl-geoportal/v2/server"
)

func main() {
	context.Run(func(ctx context.Context) error {
		var cfg config.Config
		err := ctx.LoadCustomConfig(&cfg)
		if err != nil {
			return err
		}

		// urls composed here have no page context, the ssl option decides the protocol
		r := resolver.New(cfg.SSL, resolver.NoHost())

		var cat *catalog.Catalog
		if len(cfg.Keys) > 0 {
			cat, err = catalog.Build(r, cfg.Keys)
			if err != nil {
				return errors.Trace(err)
			}
		}

		publisher, err := publish.NewPublisher(cfg.Targets, nil)
		if err != nil {
			return errors.Trace(err)
		}
		defer publisher.Close()

		if cat != nil {
			if err = publisher.Publish(cat); err != nil {
				log.L().Warn("catalog not published to every target", log.Error(err))
			}
		}

		svr := server.NewHTTPServer(cfg.Server, r, cat)
		svr.Start()
		defer svr.Close()

		ctx.Wait()
		return nil
	})
}
