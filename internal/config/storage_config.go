package config

// StorageConfig defines configuration for the storage backends
type StorageConfig struct {
	S3Endpoint       string `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty" env:"S3_ENDPOINT" validate:"required"`
	S3Region         string `json:"s3_region,omitempty" yaml:"s3_region,omitempty" env:"S3_REGION"`
	S3UseSSL         bool   `json:"s3_use_ssl" yaml:"s3_use_ssl" env:"S3_USE_SSL"`
	S3AccessKey      string `json:"-" yaml:"-" env:"S3_ACCESS_KEY"`
	S3SecretKey      string `json:"-" yaml:"-" env:"S3_SECRET_KEY"`
	S3CreateBucket   bool   `json:"s3_create_bucket" yaml:"s3_create_bucket" env:"S3_CREATE_BUCKET"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"oneof=zstd gzip snappy none"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		S3Endpoint:       DefaultS3Endpoint,
		S3UseSSL:         DefaultS3UseSSL,
		CompressionCodec: DefaultStorageCompressionCodec,
	}
}

func (c *StorageConfig) applyEnv(l *envLoader) {
	apply(l, EnvS3Endpoint, &c.S3Endpoint, l.env.str)
	apply(l, EnvS3Region, &c.S3Region, l.env.str)
	apply(l, EnvS3UseSSL, &c.S3UseSSL, l.env.Bool)
	apply(l, EnvS3AccessKey, &c.S3AccessKey, l.env.str)
	apply(l, EnvS3SecretKey, &c.S3SecretKey, l.env.str)
	apply(l, EnvS3CreateBucket, &c.S3CreateBucket, l.env.Bool)
}
