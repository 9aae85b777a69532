package artifact

import (
	"context"
	"fmt"

	"github.com/ThadPinch/ffp-render/internal/config"
)

// NewStore builds the configured artifact store
func NewStore(ctx context.Context, cfg *config.ArtifactConfig) (Store, error) {
	switch cfg.Provider {
	case "localfs":
		if cfg.LocalRoot == "" {
			return nil, fmt.Errorf("artifact local_root is required for localfs provider")
		}
		return NewLocalFS(cfg.LocalRoot), nil

	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})

	default:
		return nil, fmt.Errorf("unknown artifact provider: %s", cfg.Provider)
	}
}
