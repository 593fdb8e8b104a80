package usermanager

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/postgres-ai/askdb/pkg/config"
)

func TestRequestQuota(t *testing.T) {
	um := NewUserManager(config.Quota{Limit: 2, Interval: 60})

	require.NoError(t, um.RequestQuota("alice"))
	require.NoError(t, um.RequestQuota("alice"))

	err := um.RequestQuota("alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.Contains(t, err.Error(), "limit of requests per 60 seconds (2)")

	assert.NoError(t, um.RequestQuota("bob"), "quotas are tracked per client")
	assert.Equal(t, 2, um.Users())
}

func TestRequestQuotaWindowReset(t *testing.T) {
	user := NewUser("alice", Quota{limit: 1, interval: 0})

	for i := 0; i < 3; i++ {
		assert.NoError(t, user.RequestQuota())
	}
}

func TestRequestQuotaUnlimited(t *testing.T) {
	um := NewUserManager(config.Quota{Limit: 0, Interval: 60})

	for i := 0; i < 20; i++ {
		assert.NoError(t, um.RequestQuota("alice"))
	}
}

func TestCreateUserConcurrently(t *testing.T) {
	um := NewUserManager(config.Quota{Limit: 100, Interval: 60})

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.NoError(t, um.RequestQuota("alice"))
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, um.Users())
}

func TestRemoveIdleUsers(t *testing.T) {
	um := NewUserManager(config.Quota{Limit: 5, Interval: 60})

	require.NoError(t, um.RequestQuota("alice"))
	require.NoError(t, um.RequestQuota("bob"))

	um.CreateUser("alice").lastActionTs = time.Now().Add(-2 * time.Hour)
	um.CreateUser("bob").lastActionTs = time.Now().Add(-30 * time.Second)

	assert.Equal(t, 1, um.RemoveIdleUsers(time.Second), "bob is still within the quota window")
	assert.Equal(t, 1, um.Users())

	_, ok := um.findUser("bob")
	assert.True(t, ok)

	assert.Equal(t, 0, um.RemoveIdleUsers(time.Hour))
}
