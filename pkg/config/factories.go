package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/casetrace/casetrace/internal/logger"
	"github.com/casetrace/casetrace/pkg/engine"
	"github.com/casetrace/casetrace/pkg/engine/extract"
	engineS3 "github.com/casetrace/casetrace/pkg/engine/s3"
)

// BuildEngine creates the analysis engine selected by the configuration.
//
// The Type field determines which backend is created; the matching
// type-specific map is decoded into that backend's own config struct.
//
// Supported types:
//   - "extract": pkg/engine/extract over a local evidence directory
//   - "s3": pkg/engine/s3 over an S3 (or S3-compatible) bucket
func BuildEngine(ctx context.Context, cfg EngineConfig) (engine.Engine, error) {
	switch cfg.Type {
	case "extract":
		return buildExtractEngine(cfg.Extract)
	case "s3":
		return buildS3Engine(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown engine type %q", cfg.Type)
	}
}

func buildExtractEngine(options map[string]any) (engine.Engine, error) {
	type extractConfig struct {
		Root string `mapstructure:"root"`
	}

	var engCfg extractConfig
	if err := mapstructure.Decode(options, &engCfg); err != nil {
		return nil, fmt.Errorf("decode extract engine config: %w", err)
	}
	if engCfg.Root == "" {
		return nil, fmt.Errorf("extract engine: root is required")
	}

	eng, err := extract.New(extract.Config{Root: engCfg.Root})
	if err != nil {
		return nil, fmt.Errorf("create extract engine: %w", err)
	}

	logger.Info("extract engine initialized: root=%s", engCfg.Root)
	return eng, nil
}

func buildS3Engine(ctx context.Context, options map[string]any) (engine.Engine, error) {
	type s3EngineConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var engCfg s3EngineConfig
	if err := mapstructure.Decode(options, &engCfg); err != nil {
		return nil, fmt.Errorf("decode s3 engine config: %w", err)
	}
	if engCfg.Bucket == "" {
		return nil, fmt.Errorf("s3 engine: bucket is required")
	}
	if engCfg.Region == "" {
		return nil, fmt.Errorf("s3 engine: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(engCfg.Region))

	// Custom endpoint for S3-compatible storage (MinIO, Localstack, ...).
	if engCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               engCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default chain.
	if engCfg.AccessKeyID != "" && engCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			engCfg.AccessKeyID,
			engCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := engCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		// Path-style addressing for MinIO/Localstack compatibility.
		if engCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	eng, err := engineS3.New(ctx, engineS3.Config{
		Client:    client,
		Bucket:    engCfg.Bucket,
		KeyPrefix: engCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 engine: %w", err)
	}

	logger.Info("s3 engine initialized: bucket=%s, region=%s, prefix=%s",
		engCfg.Bucket, engCfg.Region, engCfg.KeyPrefix)
	return eng, nil
}
