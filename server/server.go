package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/http"
	"github.com/baetyl/baetyl-go/v2/log"
	routing "github.com/qiangxue/fasthttp-routing"
	"github.com/valyala/fasthttp"

	"github.com/baetyl/baetyl-geoportal/v2/catalog"
	"github.com/baetyl/baetyl-geoportal/v2/config"
	"github.com/baetyl/baetyl-geoportal/v2/resolver"
)

const headerForwardedProto = "X-Forwarded-Proto"

// ServiceInfo service description returned by the service listing
type ServiceInfo struct {
	Name     resolver.Service   `json:"name"`
	Variants []resolver.Variant `json:"variants"`
}

// ServiceURLs resolved urls of a service, url is set for single path services
type ServiceURLs struct {
	Service resolver.Service `json:"service"`
	URL     string           `json:"url,omitempty"`
	URLs    resolver.URLs    `json:"urls,omitempty"`
}

// HTTPServer serves the default urls of the geoportal services
type HTTPServer struct {
	cfg      config.ServerConfig
	resolver *resolver.Resolver
	catalog  *catalog.Catalog
	handler  fasthttp.RequestHandler
	server   *http.Server
	logger   *log.Logger
}

// NewHTTPServer creates the server, the catalog may be nil
func NewHTTPServer(cfg config.ServerConfig, r *resolver.Resolver, c *catalog.Catalog) *HTTPServer {
	svc := &HTTPServer{
		cfg:      cfg,
		resolver: r,
		catalog:  c,
		logger:   log.With(log.Any("http server", "geoportal")),
	}
	svc.handler = svc.initRouter()
	svc.server = http.NewServer(http.ServerConfig{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, svc.handler)
	return svc
}

func (h *HTTPServer) initRouter() fasthttp.RequestHandler {
	router := routing.New()
	router.Get("/services", Wrapper(h.ListServices))
	router.Get("/services/<service>", Wrapper(h.ResolveService))
	router.Get("/catalog", Wrapper(h.GetCatalog))
	return router.HandleRequest
}

func (h *HTTPServer) ListServices(_ *routing.Context) (interface{}, error) {
	var out []ServiceInfo
	for _, s := range resolver.Services() {
		out = append(out, ServiceInfo{Name: s, Variants: s.Variants()})
	}
	return out, nil
}

// ResolveService resolves one service, the access key comes from the key
// query parameter or, as a comma separated list, from the keys parameter
func (h *HTTPServer) ResolveService(ctx *routing.Context) (interface{}, error) {
	s, err := resolver.ParseService(ctx.Param("service"))
	if err != nil {
		return nil, errors.Trace(err)
	}
	urls, err := h.resolverFor(ctx).Resolve(s, keysOf(ctx.QueryArgs()))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if s.Single() {
		return ServiceURLs{Service: s, URL: urls[resolver.Default]}, nil
	}
	return ServiceURLs{Service: s, URLs: urls}, nil
}

func (h *HTTPServer) GetCatalog(_ *routing.Context) (interface{}, error) {
	if h.catalog == nil {
		return nil, errors.Trace(errCatalogNotFound)
	}
	return h.catalog, nil
}

// resolverFor uses the request scheme as page protocol when configured to
func (h *HTTPServer) resolverFor(ctx *routing.Context) *resolver.Resolver {
	if !h.cfg.FollowRequestScheme {
		return h.resolver
	}
	scheme := "http"
	if ctx.IsTLS() {
		scheme = "https"
	}
	if proto := ctx.Request.Header.Peek(headerForwardedProto); len(proto) > 0 {
		scheme = string(proto)
	}
	return resolver.New(h.resolver.SSL(), resolver.PageProtocol(scheme))
}

func keysOf(args *fasthttp.Args) resolver.Keys {
	if !args.Has("keys") {
		return resolver.Key(string(args.Peek("key")))
	}
	var keys []string
	for _, k := range strings.Split(string(args.Peek("keys")), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return resolver.KeyList(keys...)
}

func (h *HTTPServer) Start() {
	go func() {
		address := fmt.Sprintf(":%d", h.cfg.Port)
		h.logger.Info("server is running", log.Any("address", address))
		if h.cfg.Cert != "" && h.cfg.Key != "" {
			if err := h.server.ListenAndServeTLS(address, h.cfg.Cert, h.cfg.Key); err != nil {
				h.logger.Error("https server shutdown", log.Error(err))
			}
		} else {
			if err := h.server.ListenAndServe(address); err != nil {
				h.logger.Error("http server shutdown", log.Error(err))
			}
		}
	}()
}

func (h *HTTPServer) Close() {
	if h.server != nil {
		err := h.server.Shutdown()
		if err != nil {
			h.logger.Error("failed to shut down http server", log.Error(err))
		}
	}
}
