package snapshot

import (
	"context"
	"fmt"

	"filippo.io/age"

	"mcat-go/internal/config"
	"mcat-go/internal/mcat"
)

// NewTargetFromConfig creates the Target named by cfg.Type. Type "none" (or
// empty) returns a nil Target.
func NewTargetFromConfig(ctx context.Context, cfg config.SnapshotConfig) (Target, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "memory":
		return NewMemoryTarget(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem snapshot target requires dir to be set")
		}
		return NewFileSystemTarget(cfg.Dir)
	case "s3":
		return NewS3Target(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, cfg.S3Endpoint)
	default:
		return nil, fmt.Errorf("unknown snapshot type: %s", cfg.Type)
	}
}

// NewSnapshotterFromConfig returns nil when snapshots are disabled.
func NewSnapshotterFromConfig(ctx context.Context, cfg config.SnapshotConfig, clock mcat.Clock) (*Snapshotter, error) {
	target, err := NewTargetFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}

	var recipient age.Recipient
	if cfg.Recipient != "" {
		recipient, err = ParseRecipient(cfg.Recipient)
		if err != nil {
			return nil, err
		}
	}
	return NewSnapshotter(target, recipient, clock), nil
}
