package client

import (
	"fmt"

	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/utils"

	"github.com/baetyl/baetyl-geoportal/v2/config"
)

const clientPrefix = "baetyl-geoportal"

// NewClient creates the client of a target according to its kind
func NewClient(info config.TargetInfo) (c Client, err error) {
	switch info.Kind {
	case config.KindMqtt:
		cfg := new(MqttClientCfg)
		if err = parse(info, cfg); err != nil {
			return nil, err
		}
		if cfg.ClientID == "" {
			cfg.ClientID = generateClientID(info.Name)
		}
		c, err = NewMqttClient(cfg)
	case config.KindHTTP:
		cfg := new(HTTPClientCfg)
		if err = parse(info, cfg); err != nil {
			return nil, err
		}
		c, err = NewHTTPClient(cfg)
	case config.KindKafka:
		cfg := new(KafkaClientCfg)
		if err = parse(info, cfg); err != nil {
			return nil, err
		}
		c, err = NewKafkaClient(cfg)
	case config.KindRabbit:
		cfg := new(RabbitClientCfg)
		if err = parse(info, cfg); err != nil {
			return nil, err
		}
		c, err = NewRabbitClient(cfg)
	case config.KindS3:
		cfg := new(S3ClientCfg)
		if err = parse(info, cfg); err != nil {
			return nil, err
		}
		c, err = NewS3Client(cfg)
	default:
		err = errors.Errorf("target kind (%s) is not supported", info.Kind)
	}
	return c, errors.Trace(err)
}

func parse(info config.TargetInfo, cfg interface{}) error {
	if err := utils.SetDefaults(cfg); err != nil {
		return errors.Trace(err)
	}
	if err := info.Parse(cfg); err != nil {
		return errors.Trace(fmt.Errorf("target (%s): %w", info.Name, err))
	}
	return nil
}

func generateClientID(name string) string {
	return fmt.Sprintf("%s-%s", clientPrefix, name)
}
