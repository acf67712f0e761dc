package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vigilaperu/chaski/pkg/models"
)

// Failover wraps a primary generator with a backup tried once when the
// primary fails. The switch is opaque to callers.
type Failover struct {
	primary Generator
	backup  Generator
	name    string
}

// NewFailover creates a failover generator. name identifies the stage in logs.
func NewFailover(name string, primary, backup Generator) *Failover {
	return &Failover{name: name, primary: primary, backup: backup}
}

// Generate tries the primary generator and falls back to the backup on error.
// A cancelled context is not retried against the backup.
func (f *Failover) Generate(ctx context.Context, req Request) (*models.Message, error) {
	msg, err := f.primary.Generate(ctx, req)
	if err == nil {
		return msg, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if f.backup == nil {
		return nil, err
	}

	log.Warn().Str("stage", f.name).Err(err).Msg("Primary model failed, trying backup")

	msg, berr := f.backup.Generate(ctx, req)
	if berr != nil {
		return nil, fmt.Errorf("primary: %w; backup: %v", err, berr)
	}
	return msg, nil
}
