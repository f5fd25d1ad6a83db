package client

import (
	"context"
	"fmt"

	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/log"
	"github.com/wagslane/go-rabbitmq"

	"github.com/baetyl/baetyl-geoportal/v2/config"
)

type RabbitClientCfg struct {
	Address    string `yaml:"address" json:"address" validate:"nonzero"`
	Username   string `yaml:"username" json:"username"`
	Password   string `yaml:"password" json:"password"`
	Exchange   string `yaml:"exchange" json:"exchange" default:""`
	RoutingKey string `yaml:"routingKey" json:"routingKey" default:""`
}

type RabbitClient struct {
	cfg    *RabbitClientCfg
	conn   *rabbitmq.Conn
	pub    *rabbitmq.Publisher
	tasks  chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger
}

func NewRabbitClient(cfg *RabbitClientCfg) (Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("rabbit-mq target requires an address")
	}
	conn, err := rabbitmq.NewConn(
		rabbitURL(cfg),
		rabbitmq.WithConnectionOptionsLogging,
	)
	if err != nil {
		return nil, errors.Trace(err)
	}
	pub, err := rabbitmq.NewPublisher(
		conn,
		rabbitmq.WithPublisherOptionsLogging,
	)
	if err != nil {
		conn.Close()
		return nil, errors.Trace(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RabbitClient{
		conn:   conn,
		cfg:    cfg,
		pub:    pub,
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(chan []byte, config.TaskLength),
		logger: log.With(log.Any("client", "rabbit-mq")),
	}, nil
}

func rabbitURL(cfg *RabbitClientCfg) string {
	if cfg.Username != "" && cfg.Password != "" {
		return fmt.Sprintf("amqp://%s:%s@%s", cfg.Username, cfg.Password, cfg.Address)
	}
	return fmt.Sprintf("amqp://%s", cfg.Address)
}

func (r *RabbitClient) SendOrDrop(data []byte) error {
	if r.ctx.Err() != nil {
		return errors.New("rabbit mq has exited")
	}
	select {
	case <-r.ctx.Done():
		return errors.New("rabbit mq has exited")
	case r.tasks <- data:
		return nil
	}
}

func (r *RabbitClient) Start() error {
	go func() {
		for {
			select {
			case <-r.ctx.Done():
				return
			case task := <-r.tasks:
				err := r.pub.Publish(
					task,
					[]string{r.cfg.RoutingKey},
					rabbitmq.WithPublishOptionsContentType("application/json"),
					rabbitmq.WithPublishOptionsExchange(r.cfg.Exchange),
				)
				if err != nil {
					r.logger.Error("failed to publish rabbit data", log.Error(err))
				}
			}
		}
	}()
	return nil
}

// Close closes client
func (r *RabbitClient) Close() error {
	r.cancel()
	r.pub.Close()
	return r.conn.Close()
}
