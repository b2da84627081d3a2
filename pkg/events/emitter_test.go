package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/pkg/models"
)

func TestEmitActivity(t *testing.T) {
	entry := &models.ActivityLog{
		Identity:    models.Identity{ID: "act-1"},
		ActionType:  models.ActionClientCreated,
		Description: "Client created",
	}

	t.Run("should be a no-op without a producer", func(t *testing.T) {
		emitter := NewEmitter(nil, zap.NewNop())
		assert.NoError(t, emitter.EmitActivity(context.Background(), entry))
	})

	t.Run("should be safe on a nil emitter", func(t *testing.T) {
		var emitter *Emitter
		assert.NoError(t, emitter.EmitActivity(context.Background(), entry))
	})
}
