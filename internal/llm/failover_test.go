package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilaperu/chaski/pkg/models"
)

func okGenerator(text string, calls *int) Generator {
	return Func(func(ctx context.Context, req Request) (*models.Message, error) {
		if calls != nil {
			*calls++
		}
		msg := models.NewAssistant(text)
		return &msg, nil
	})
}

func failGenerator(err error, calls *int) Generator {
	return Func(func(ctx context.Context, req Request) (*models.Message, error) {
		if calls != nil {
			*calls++
		}
		return nil, err
	})
}

func TestFailoverUsesPrimaryWhenHealthy(t *testing.T) {
	var backupCalls int
	f := NewFailover("answer", okGenerator("primaria", nil), okGenerator("respaldo", &backupCalls))

	msg, err := f.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "primaria", msg.Content)
	assert.Zero(t, backupCalls)
}

func TestFailoverFallsBackOnce(t *testing.T) {
	var primaryCalls, backupCalls int
	f := NewFailover("answer",
		failGenerator(errors.New("rate limited"), &primaryCalls),
		okGenerator("respaldo", &backupCalls))

	msg, err := f.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "respaldo", msg.Content)
	assert.Equal(t, 1, primaryCalls)
	assert.Equal(t, 1, backupCalls)
}

func TestFailoverPropagatesDoubleFailure(t *testing.T) {
	f := NewFailover("answer",
		failGenerator(errors.New("primary down"), nil),
		failGenerator(errors.New("backup down"), nil))

	_, err := f.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary down")
	assert.Contains(t, err.Error(), "backup down")
}

func TestFailoverSkipsBackupOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var backupCalls int
	f := NewFailover("answer",
		Func(func(ctx context.Context, req Request) (*models.Message, error) {
			cancel()
			return nil, ctx.Err()
		}),
		okGenerator("respaldo", &backupCalls))

	_, err := f.Generate(ctx, Request{})
	require.Error(t, err)
	assert.Zero(t, backupCalls)
}

func TestFailoverWithoutBackup(t *testing.T) {
	f := NewFailover("classify", failGenerator(errors.New("boom"), nil), nil)
	_, err := f.Generate(context.Background(), Request{})
	assert.EqualError(t, err, "boom")
}
