package client

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/log"
	"github.com/baetyl/baetyl-go/v2/utils"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/baetyl/baetyl-geoportal/v2/config"
)

type KafkaClientCfg struct {
	Address           []string `yaml:"address" json:"address" validate:"nonzero"`
	Topic             string   `yaml:"topic" json:"topic" validate:"nonzero"`
	SASLType          string   `yaml:"saslType" json:"saslType" default:""`
	Username          string   `yaml:"username" json:"username"`
	Password          string   `yaml:"password" json:"password"`
	utils.Certificate `yaml:",inline" json:",inline"`
}

type KafkaClient struct {
	writer *kafka.Writer
	topic  string
	tasks  chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger
}

func NewKafkaClient(cfg *KafkaClientCfg) (Client, error) {
	if len(cfg.Address) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka target requires an address and a topic")
	}
	var tlsCfg *tls.Config
	var err error
	if cfg.CA != "" && cfg.Cert != "" && cfg.Key != "" {
		tlsCfg, err = utils.NewTLSConfigClient(utils.Certificate{
			CA:                 cfg.CA,
			Cert:               cfg.Cert,
			Key:                cfg.Key,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})
		if err != nil {
			return nil, errors.Trace(err)
		}
	}
	dialer := &kafka.Dialer{
		Timeout:   20 * time.Second,
		DualStack: true,
		TLS:       tlsCfg,
	}

	switch cfg.SASLType {
	case "":
	case "plain":
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	case "scram256":
		dialer.SASLMechanism, err = scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
		if err != nil {
			return nil, errors.Trace(err)
		}
	case "scram512":
		dialer.SASLMechanism, err = scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
		if err != nil {
			return nil, errors.Trace(err)
		}
	default:
		return nil, errors.Errorf("sasl type (%s) is not supported", cfg.SASLType)
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.Address,
		Topic:    cfg.Topic,
		Dialer:   dialer,
		Balancer: &kafka.Hash{},
	})
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaClient{
		writer: w,
		topic:  cfg.Topic,
		tasks:  make(chan []byte, config.TaskLength),
		ctx:    ctx,
		cancel: cancel,
		logger: log.With(log.Any("client", "kafka"), log.Any("topic", cfg.Topic)),
	}, nil
}

func (k *KafkaClient) SendOrDrop(data []byte) error {
	if k.ctx.Err() != nil {
		return errors.New("ctx done")
	}
	select {
	case <-k.ctx.Done():
		return errors.New("ctx done")
	case k.tasks <- data:
		return nil
	}
}

func (k *KafkaClient) Start() error {
	go func() {
		for {
			select {
			case <-k.ctx.Done():
				return
			case task := <-k.tasks:
				err := k.writer.WriteMessages(k.ctx, kafka.Message{
					Key:   []byte(clientPrefix),
					Value: task,
				})
				if err != nil {
					k.logger.Error("failed to write kafka msg", log.Error(err))
				}
			}
		}
	}()
	return nil
}

// Close closes client
func (k *KafkaClient) Close() error {
	k.cancel()
	return k.writer.Close()
}
