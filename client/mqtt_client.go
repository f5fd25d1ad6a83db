package client

import (
	"github.com/256dpi/gomqtt/packet"
	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/log"
	"github.com/baetyl/baetyl-go/v2/mqtt"
	"go.uber.org/atomic"
)

type MqttClientCfg struct {
	mqtt.ClientConfig `yaml:",inline" json:",inline"`
	Topic             string `yaml:"topic" json:"topic" validate:"nonzero"`
	QOS               int    `yaml:"qos" json:"qos" default:"0" validate:"min=0,max=1"`
	Retain            bool   `yaml:"retain" json:"retain"`
}

type MqttClient struct {
	cfg    *MqttClientCfg
	cli    *mqtt.Client
	id     *atomic.Uint32
	logger *log.Logger
}

func NewMqttClient(cfg *MqttClientCfg) (Client, error) {
	if cfg.Topic == "" {
		return nil, errors.New("mqtt target requires a topic")
	}
	ops, err := cfg.ToClientOptions()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &MqttClient{
		cfg:    cfg,
		cli:    mqtt.NewClient(ops),
		id:     atomic.NewUint32(0),
		logger: log.With(log.Any("client", "mqtt"), log.Any("clientID", cfg.ClientID)),
	}, nil
}

func (m *MqttClient) SendOrDrop(data []byte) error {
	return m.cli.SendOrDrop(m.publish(data))
}

func (m *MqttClient) publish(data []byte) *packet.Publish {
	pkt := packet.NewPublish()
	pkt.Message = packet.Message{
		Topic:   m.cfg.Topic,
		Payload: data,
		QOS:     packet.QOS(m.cfg.QOS),
		Retain:  m.cfg.Retain,
	}
	if pkt.Message.QOS > 0 {
		pkt.ID = m.nextID()
	}
	return pkt
}

// nextID skips zero, which is not a valid id for qos 1
func (m *MqttClient) nextID() packet.ID {
	for {
		id := packet.ID(m.id.Inc())
		if id != 0 {
			return id
		}
	}
}

func (m *MqttClient) Start() error {
	return m.cli.Start(mqtt.NewObserverWrapper(func(*packet.Publish) error {
		return nil
	}, func(pkt *packet.Puback) error {
		m.logger.Debug("catalog acknowledged", log.Any("id", pkt.ID))
		return nil
	}, func(err error) {
		m.logger.Error("error occurs in mqtt target", log.Error(err))
	}))
}

func (m *MqttClient) Close() error {
	if m.cli != nil {
		return m.cli.Close()
	}
	return nil
}
