package bootstrap

import (
	"context"
	"fmt"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/loan-guidance/loan-guidance-backend/config"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
)

// NewArtifactSource resolves MODEL_SOURCE into an artifact.Source. S3
// credentials come from the default AWS chain.
func NewArtifactSource(ctx context.Context, cfg config.ModelConfig) (artifact.Source, error) {
	switch cfg.Source {
	case config.ModelSourceS3:
		awsConf, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return artifact.NewS3Source(s3.NewFromConfig(awsConf), cfg.Bucket, cfg.Key), nil
	case config.ModelSourceFile:
		return artifact.FileSource{Path: cfg.Path}, nil
	case config.ModelSourceBuiltin:
		return artifact.BuiltinSource{}, nil
	default:
		return nil, fmt.Errorf("unknown model source %q", cfg.Source)
	}
}
