package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	http2 "net/http"
	"strings"

	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/http"
	"github.com/baetyl/baetyl-go/v2/log"
	"github.com/baetyl/baetyl-go/v2/utils"

	"github.com/baetyl/baetyl-geoportal/v2/config"
)

type HTTPClientCfg struct {
	Address           string `yaml:"address" json:"address" validate:"nonzero"`
	Path              string `yaml:"path" json:"path" default:""`
	Method            string `yaml:"method" json:"method" default:"POST"`
	utils.Certificate `yaml:",inline" json:",inline"`
}

type HTTPClient struct {
	cli    *http.Client
	url    string
	method string
	tasks  chan []byte
	cancel context.CancelFunc
	ctx    context.Context
	logger *log.Logger
}

func NewHTTPClient(cfg *HTTPClientCfg) (Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("http target requires an address")
	}
	options := http.NewClientOptions()
	options.Address = cfg.Address
	if strings.HasPrefix(cfg.Address, "https") {
		var tlsCfg *tls.Config
		var err error
		tlsCfg, err = utils.NewTLSConfigClient(utils.Certificate{
			CA:                 cfg.CA,
			Cert:               cfg.Cert,
			Key:                cfg.Key,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
		options.TLSConfig = tlsCfg
	}
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http2.MethodPost
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPClient{
		cli:    http.NewClient(options),
		url:    fmt.Sprintf("%s%s", cfg.Address, cfg.Path),
		method: method,
		cancel: cancel,
		ctx:    ctx,
		tasks:  make(chan []byte, config.TaskLength),
		logger: log.With(log.Any("client", "http")),
	}, nil
}

func (h *HTTPClient) SendOrDrop(data []byte) error {
	if h.ctx.Err() != nil {
		return errors.New("ctx done")
	}
	select {
	case <-h.ctx.Done():
		return errors.New("ctx done")
	case h.tasks <- data:
		return nil
	}
}

func (h *HTTPClient) Start() error {
	go func() {
		for {
			select {
			case <-h.ctx.Done():
				return
			case task := <-h.tasks:
				if err := h.send(task); err != nil {
					h.logger.Error("failed to send catalog", log.Any("url", h.url), log.Error(err))
				}
			}
		}
	}()
	return nil
}

func (h *HTTPClient) send(data []byte) error {
	header := map[string]string{"Content-Type": "application/json"}
	res, err := h.cli.SendUrl(h.method, h.url, bytes.NewReader(data), header)
	if err != nil {
		return errors.Trace(err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.StatusCode < http2.StatusOK || res.StatusCode > http2.StatusAlreadyReported {
		return errors.Errorf("[%d] %s", res.StatusCode, res.Status)
	}
	h.logger.Debug("catalog sent", log.Any("url", h.url))
	return nil
}

// Close closes client
func (h *HTTPClient) Close() error {
	h.cancel()
	return nil
}
