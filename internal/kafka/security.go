package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/IBM/sarama"
	"github.com/aws/aws-msk-iam-sasl-signer-go/signer"
	"github.com/jittakal/kafanalytics/internal/config"
	"github.com/xdg-go/scram"
	"go.uber.org/zap"
)

// configureSecurity applies the SASL and TLS settings for the security protocol
func configureSecurity(saramaConfig *sarama.Config, cfg config.KafkaConfig, logger *zap.Logger) error {
	switch cfg.SecurityProtocol {
	case "", "PLAINTEXT":
		logger.Info("Using PLAINTEXT security protocol")
		return nil

	case "SASL_PLAINTEXT":
		saramaConfig.Net.SASL.Enable = true
		return configureSASL(saramaConfig, cfg, logger)

	case "SASL_SSL":
		saramaConfig.Net.SASL.Enable = true
		saramaConfig.Net.TLS.Enable = true
		if err := configureSASL(saramaConfig, cfg, logger); err != nil {
			return err
		}
		return configureTLS(saramaConfig, cfg, logger)
	}

	return fmt.Errorf("unsupported security protocol: %s", cfg.SecurityProtocol)
}

// scramMechanisms maps SCRAM mechanism names to their sarama type and hash
var scramMechanisms = map[string]struct {
	mechanism sarama.SASLMechanism
	hash      scram.HashGeneratorFcn
}{
	"SCRAM-SHA-256": {mechanism: sarama.SASLTypeSCRAMSHA256, hash: SHA256},
	"SCRAM-SHA-512": {mechanism: sarama.SASLTypeSCRAMSHA512, hash: SHA512},
}

// configureSASL configures the SASL mechanism and credentials
func configureSASL(saramaConfig *sarama.Config, cfg config.KafkaConfig, logger *zap.Logger) error {
	if s, ok := scramMechanisms[cfg.SASLMechanism]; ok {
		hashFn := s.hash
		saramaConfig.Net.SASL.Mechanism = s.mechanism
		saramaConfig.Net.SASL.User = cfg.SASLUsername
		saramaConfig.Net.SASL.Password = cfg.SASLPassword
		saramaConfig.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &XDGSCRAMClient{HashGeneratorFcn: hashFn}
		}
		logger.Info("Using SASL SCRAM authentication", zap.String("mechanism", cfg.SASLMechanism))
		return nil
	}

	switch cfg.SASLMechanism {
	case "PLAIN":
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		saramaConfig.Net.SASL.User = cfg.SASLUsername
		saramaConfig.Net.SASL.Password = cfg.SASLPassword
		logger.Info("Using SASL PLAIN authentication")
		return nil

	case "AWS_MSK_IAM":
		if !cfg.AWSMSK.Enabled {
			return fmt.Errorf("AWS MSK IAM authentication requires awsMsk.enabled=true")
		}
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypeOAuth
		saramaConfig.Net.SASL.TokenProvider = &MSKAccessTokenProvider{region: cfg.AWSMSK.Region}
		logger.Info("Using AWS MSK IAM authentication", zap.String("region", cfg.AWSMSK.Region))
		return nil
	}

	return fmt.Errorf("unsupported SASL mechanism: %s", cfg.SASLMechanism)
}

// configureTLS builds the TLS client configuration from certificate files
func configureTLS(saramaConfig *sarama.Config, cfg config.KafkaConfig, logger *zap.Logger) error {
	if !cfg.TLS.Enabled {
		logger.Warn("TLS is required for SASL_SSL but not enabled in config")
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify,
	}

	if cfg.TLS.CACertFile != "" {
		pem, err := os.ReadFile(cfg.TLS.CACertFile)
		if err != nil {
			return fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return fmt.Errorf("failed to parse CA certificate %s", cfg.TLS.CACertFile)
		}
		tlsConfig.RootCAs = pool
		logger.Info("Loaded CA certificate", zap.String("file", cfg.TLS.CACertFile))
	}

	if cfg.TLS.ClientCertFile != "" && cfg.TLS.ClientKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLS.ClientCertFile, cfg.TLS.ClientKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
		logger.Info("Loaded client certificate", zap.String("certFile", cfg.TLS.ClientCertFile))
	}

	saramaConfig.Net.TLS.Config = tlsConfig
	return nil
}

// compressionCodecs maps configured compression names to sarama codecs
var compressionCodecs = map[string]sarama.CompressionCodec{
	"gzip":   sarama.CompressionGZIP,
	"snappy": sarama.CompressionSnappy,
	"lz4":    sarama.CompressionLZ4,
	"zstd":   sarama.CompressionZSTD,
}

// parseCompressionType falls back to no compression for unknown names
func parseCompressionType(compressionType string) sarama.CompressionCodec {
	if codec, ok := compressionCodecs[compressionType]; ok {
		return codec
	}
	return sarama.CompressionNone
}

// MSKAccessTokenProvider implements sarama.AccessTokenProvider for AWS MSK IAM
type MSKAccessTokenProvider struct {
	region string
}

// Token signs a fresh MSK IAM auth token for the configured region
func (m *MSKAccessTokenProvider) Token() (*sarama.AccessToken, error) {
	token, _, err := signer.GenerateAuthToken(context.Background(), m.region)
	if err != nil {
		return nil, fmt.Errorf("failed to generate MSK IAM token: %w", err)
	}
	return &sarama.AccessToken{Token: token}, nil
}
