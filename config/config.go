package config

import (
	"encoding/json"

	"github.com/baetyl/baetyl-go/v2/utils"
)

type Kind string

// All target kinds
const (
	KindMqtt   Kind = "mqtt"
	KindHTTP   Kind = "http"
	KindRabbit Kind = "rabbit-mq"
	KindKafka  Kind = "kafka"
	KindS3     Kind = "s3"
)

const TaskLength = 1024

// Config config of geoportal module
type Config struct {
	SSL     bool         `yaml:"ssl" json:"ssl"`
	Keys    []string     `yaml:"keys" json:"keys"`
	Server  ServerConfig `yaml:"server" json:"server"`
	Targets []TargetInfo `yaml:"targets" json:"targets"`
}

// ServerConfig lookup server config
type ServerConfig struct {
	Port                int32 `yaml:"port" json:"port" default:"8080"`
	FollowRequestScheme bool  `yaml:"followRequestScheme" json:"followRequestScheme"`
	utils.Certificate   `yaml:",inline" json:",inline"`
}

// TargetInfo catalog target info
type TargetInfo struct {
	Name  string                 `yaml:"name" json:"name" validate:"nonzero"`
	Kind  Kind                   `yaml:"kind" json:"kind" validate:"nonzero"`
	Value map[string]interface{} `yaml:",inline" json:",inline"`
}

// Parse parse to get real config
func (v *TargetInfo) Parse(in interface{}) error {
	data, err := json.Marshal(v.Value)
	if err != nil {
		return err
	}
	return utils.UnmarshalJSON(data, in)
}
