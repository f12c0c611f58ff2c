package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/jittakal/kafanalytics/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigureSecurity(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config.KafkaConfig
		wantErr       bool
		wantSASL      bool
		wantTLS       bool
		wantMechanism sarama.SASLMechanism
	}{
		{
			name: "plaintext",
			cfg:  config.KafkaConfig{SecurityProtocol: "PLAINTEXT"},
		},
		{
			name: "empty protocol defaults to plaintext",
			cfg:  config.KafkaConfig{},
		},
		{
			name:          "sasl plaintext with plain",
			cfg:           config.KafkaConfig{SecurityProtocol: "SASL_PLAINTEXT", SASLMechanism: "PLAIN", SASLUsername: "u", SASLPassword: "p"},
			wantSASL:      true,
			wantMechanism: sarama.SASLTypePlaintext,
		},
		{
			name:          "sasl plaintext with scram 256",
			cfg:           config.KafkaConfig{SecurityProtocol: "SASL_PLAINTEXT", SASLMechanism: "SCRAM-SHA-256"},
			wantSASL:      true,
			wantMechanism: sarama.SASLTypeSCRAMSHA256,
		},
		{
			name:          "sasl ssl with scram 512",
			cfg:           config.KafkaConfig{SecurityProtocol: "SASL_SSL", SASLMechanism: "SCRAM-SHA-512", TLS: config.TLSConfig{Enabled: true}},
			wantSASL:      true,
			wantTLS:       true,
			wantMechanism: sarama.SASLTypeSCRAMSHA512,
		},
		{
			name:          "aws msk iam",
			cfg:           config.KafkaConfig{SecurityProtocol: "SASL_SSL", SASLMechanism: "AWS_MSK_IAM", AWSMSK: config.AWSMSKConfig{Enabled: true, Region: "eu-west-1"}},
			wantSASL:      true,
			wantTLS:       true,
			wantMechanism: sarama.SASLTypeOAuth,
		},
		{
			name:    "aws msk iam not enabled",
			cfg:     config.KafkaConfig{SecurityProtocol: "SASL_SSL", SASLMechanism: "AWS_MSK_IAM"},
			wantErr: true,
		},
		{
			name:    "unknown mechanism",
			cfg:     config.KafkaConfig{SecurityProtocol: "SASL_PLAINTEXT", SASLMechanism: "GSSAPI"},
			wantErr: true,
		},
		{
			name:    "unknown protocol",
			cfg:     config.KafkaConfig{SecurityProtocol: "SSL_ONLY"},
			wantErr: true,
		},
		{
			name:    "missing ca file",
			cfg:     config.KafkaConfig{SecurityProtocol: "SASL_SSL", SASLMechanism: "PLAIN", TLS: config.TLSConfig{Enabled: true, CACertFile: "/nonexistent/ca.pem"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saramaConfig := sarama.NewConfig()
			err := configureSecurity(saramaConfig, tt.cfg, zap.NewNop())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantSASL, saramaConfig.Net.SASL.Enable)
			assert.Equal(t, tt.wantTLS, saramaConfig.Net.TLS.Enable)
			if tt.wantSASL {
				assert.Equal(t, tt.wantMechanism, saramaConfig.Net.SASL.Mechanism)
			}
		})
	}
}

func TestConfigureSASL_SCRAMClientGenerator(t *testing.T) {
	saramaConfig := sarama.NewConfig()
	cfg := config.KafkaConfig{SASLMechanism: "SCRAM-SHA-256", SASLUsername: "user", SASLPassword: "pass"}
	require.NoError(t, configureSASL(saramaConfig, cfg, zap.NewNop()))

	require.NotNil(t, saramaConfig.Net.SASL.SCRAMClientGeneratorFunc)
	client := saramaConfig.Net.SASL.SCRAMClientGeneratorFunc()
	require.NoError(t, client.Begin("user", "pass", ""))

	first, err := client.Step("")
	require.NoError(t, err)
	assert.Contains(t, first, "n=user")
	assert.False(t, client.Done())
}

func TestParseCompressionType(t *testing.T) {
	tests := map[string]sarama.CompressionCodec{
		"gzip":   sarama.CompressionGZIP,
		"snappy": sarama.CompressionSnappy,
		"lz4":    sarama.CompressionLZ4,
		"zstd":   sarama.CompressionZSTD,
		"none":   sarama.CompressionNone,
		"":       sarama.CompressionNone,
		"brotli": sarama.CompressionNone,
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, parseCompressionType(name))
		})
	}
}
