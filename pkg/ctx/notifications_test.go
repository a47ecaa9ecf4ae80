package ctx

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/stremio"
)

func TestApplyNotificationsInstallsBucketAndFlushes(t *testing.T) {
	c, m := newTestCtx(t)
	bucket := stremio.NewNotificationsBucket("uid1", m.Now())
	bucket.Items["tt1"] = map[string]stremio.NotificationItem{}

	eff := c.Update(ActionApplyNotifications{Bucket: bucket})

	if diff := cmp.Diff(bucket, c.Notifications); diff != "" {
		t.Errorf("notifications bucket mismatch (-want +got):\n%s", diff)
	}
	msgs := runFuture(t, eff)
	assert.Empty(t, msgs)

	raw, found, err := m.GetStorage(context.Background(), env.KeyNotifications)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(raw), "uid1")
}
