package server

import (
	"encoding/json"
	"testing"

	routing "github.com/qiangxue/fasthttp-routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/baetyl/baetyl-geoportal/v2/catalog"
	"github.com/baetyl/baetyl-geoportal/v2/config"
	"github.com/baetyl/baetyl-geoportal/v2/resolver"
)

func doGet(h fasthttp.RequestHandler, uri string, header map[string]string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(uri)
	for k, v := range header {
		ctx.Request.Header.Set(k, v)
	}
	h(ctx)
	return ctx
}

func newTestServer(t *testing.T, cfg config.ServerConfig, keys []string) *HTTPServer {
	r := resolver.New(false, resolver.NoHost())
	var c *catalog.Catalog
	if len(keys) > 0 {
		var err error
		c, err = catalog.Build(r, keys)
		require.NoError(t, err)
	}
	return NewHTTPServer(cfg, r, c)
}

func TestResolveSingleService(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)

	ctx := doGet(s.handler, "/services/geocode?key=ABC", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var out ServiceURLs
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	assert.Equal(t, resolver.Geocode, out.Service)
	assert.Equal(t, "http://wxs.ign.fr/ABC/geoportail/ols", out.URL)
	assert.Empty(t, out.URLs)
}

func TestResolveMultiService(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)

	ctx := doGet(s.handler, "/services/route?key=ABC", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var out ServiceURLs
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	assert.Equal(t, resolver.Route, out.Service)
	assert.Equal(t, resolver.URLs{
		resolver.OLS:       "http://wxs.ign.fr/ABC/itineraire/ols",
		resolver.RouteJSON: "http://wxs.ign.fr/ABC/itineraire/rest/route.json",
		resolver.RouteXML:  "http://wxs.ign.fr/ABC/itineraire/rest/route.xml",
	}, out.URLs)
}

func TestResolveAutoConf(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)

	ctx := doGet(s.handler, "/services/autoconf?keys=k1,k2,,k3", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var out ServiceURLs
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	assert.Equal(t, "http://wxs.ign.fr/k1/autoconf?keys=k1,k2,k3", out.URLs[resolver.APIKeys])
	assert.Equal(t, "http://wxs.ign.fr/k1,k2,k3/autoconf", out.URLs[resolver.APIKey])

	ctx = doGet(s.handler, "/services/autoconf?key=k1", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = doGet(s.handler, "/services/autoconf?keys=", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestResolveUnknownService(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)

	ctx := doGet(s.handler, "/services/wmts?key=ABC", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestResolveFollowRequestScheme(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{FollowRequestScheme: true}, nil)

	ctx := doGet(s.handler, "/services/autocomplete?key=ABC", map[string]string{"X-Forwarded-Proto": "https"})
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var out ServiceURLs
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	assert.Equal(t, "https://wxs.ign.fr/ABC/ols/apis/completion", out.URL)

	// the ssl preference is ignored when following the request scheme
	s.resolver.SetSSL(true)
	ctx = doGet(s.handler, "/services/autocomplete?key=ABC", nil)
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	assert.Equal(t, "http://wxs.ign.fr/ABC/ols/apis/completion", out.URL)
}

func TestResolveSSLPreference(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)
	s.resolver.SetSSL(true)

	ctx := doGet(s.handler, "/services/autocomplete?key=ABC", map[string]string{"X-Forwarded-Proto": "http"})
	var out ServiceURLs
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	assert.Equal(t, "https://wxs.ign.fr/ABC/ols/apis/completion", out.URL)
}

func TestListServices(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)

	ctx := doGet(s.handler, "/services", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var out []ServiceInfo
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	require.Len(t, out, 7)
	assert.Equal(t, resolver.Alti, out[0].Name)
	assert.Equal(t, resolver.Alti.Variants(), out[0].Variants)
	assert.Equal(t, resolver.Route, out[6].Name)
}

func TestGetCatalog(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{}, nil)
	ctx := doGet(s.handler, "/catalog", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	s = newTestServer(t, config.ServerConfig{}, []string{"k1", "k2"})
	ctx = doGet(s.handler, "/catalog", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var out struct {
		Hostname string                      `json:"hostname"`
		Keys     map[string]json.RawMessage  `json:"keys"`
		AutoConf map[resolver.Variant]string `json:"autoconf"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	assert.Equal(t, "wxs.ign.fr", out.Hostname)
	assert.Len(t, out.Keys, 2)
	assert.Equal(t, "http://wxs.ign.fr/k1/autoconf?keys=k1,k2", out.AutoConf[resolver.APIKeys])
}

func TestWrapperPanic(t *testing.T) {
	h := Wrapper(func(*routing.Context) (interface{}, error) {
		panic("boom")
	})
	ctx := &routing.Context{RequestCtx: &fasthttp.RequestCtx{}}
	assert.NoError(t, h(ctx))
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
}
