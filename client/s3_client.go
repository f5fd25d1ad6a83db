package client

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/log"
	"github.com/baetyl/baetyl-go/v2/utils"

	"github.com/baetyl/baetyl-geoportal/v2/config"
)

type S3ClientCfg struct {
	Address string `yaml:"address" json:"address" validate:"nonzero"`
	Region  string `yaml:"region" json:"region" default:"us-east-1"`
	Ak      string `yaml:"ak" json:"ak"`
	Sk      string `yaml:"sk" json:"sk"`
	Token   string `yaml:"token,omitempty" json:"token,omitempty" default:""`
	Bucket  string `yaml:"bucket" json:"bucket" validate:"nonzero"`
	Object  string `yaml:"object" json:"object" default:"geoportal/catalog.json"`
}

type S3Client struct {
	cfg      *S3ClientCfg
	uploader *s3manager.Uploader
	tasks    chan []byte
	tomb     utils.Tomb
	logger   *log.Logger
}

func NewS3Client(cfg *S3ClientCfg) (Client, error) {
	if cfg.Address == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 target requires an address and a bucket")
	}
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.Ak, cfg.Sk, cfg.Token),
		Endpoint:         aws.String(cfg.Address),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!strings.HasPrefix(cfg.Address, "https")),
		S3ForcePathStyle: aws.Bool(true),
	}
	sessionProvider, err := session.NewSession(s3Config)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &S3Client{
		cfg:      cfg,
		uploader: s3manager.NewUploader(sessionProvider),
		tasks:    make(chan []byte, config.TaskLength),
		logger:   log.With(log.Any("storage", "s3"), log.Any("bucket", cfg.Bucket)),
	}, nil
}

func (s *S3Client) SendOrDrop(data []byte) error {
	select {
	case <-s.tomb.Dying():
		return errors.New("ctx done")
	default:
	}
	select {
	case <-s.tomb.Dying():
		return errors.New("ctx done")
	case s.tasks <- data:
		return nil
	}
}

func (s *S3Client) Start() error {
	return s.tomb.Go(func() error {
		for {
			select {
			case <-s.tomb.Dying():
				return nil
			case task := <-s.tasks:
				if err := s.upload(task); err != nil {
					s.logger.Error("failed to upload catalog", log.Any("object", s.cfg.Object), log.Error(err))
				}
			}
		}
	})
}

func (s *S3Client) upload(data []byte) error {
	params := &s3manager.UploadInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(s.cfg.Object),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err := s.uploader.UploadWithContext(ctx, params)
	if err != nil {
		return errors.Trace(err)
	}
	s.logger.Debug("catalog uploaded", log.Any("object", s.cfg.Object))
	return nil
}

// Close closes client
func (s *S3Client) Close() error {
	s.tomb.Kill(nil)
	err := s.tomb.Wait()
	if err != nil {
		s.logger.Error("failed to wait on tomb", log.Error(err))
	}
	return nil
}
