/*
2019 © Postgres.ai
*/

// Package usermanager provides a service for tracking chat clients and their request quotas.
package usermanager

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/pkg/errors"
)

// ErrQuotaExceeded means that a client has reached the request limit.
var ErrQuotaExceeded = errors.New("request quota exceeded")

// User defines a chat client and its session.
type User struct {
	ClientID string

	mu           sync.Mutex
	quota        Quota
	lastActionTs time.Time
}

// Quota defines a user quota for requests.
type Quota struct {
	ts       time.Time
	count    uint
	limit    uint
	interval uint
}

// NewUser creates a new User.
func NewUser(clientID string, quota Quota) *User {
	return &User{
		ClientID:     clientID,
		quota:        quota,
		lastActionTs: time.Now(),
	}
}

// LastActionTs returns the time of the last accepted request.
func (u *User) LastActionTs() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.lastActionTs
}

// RequestQuota checks a user request limit.
func (u *User) RequestQuota() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.quota.limit == 0 {
		u.lastActionTs = time.Now()
		return nil
	}

	interval := u.quota.interval
	sAgo := uint(time.Since(u.quota.ts) / time.Second)

	if sAgo < interval {
		if u.quota.count >= u.quota.limit {
			return errors.Wrapf(ErrQuotaExceeded,
				"You have reached the limit of requests per %s (%d). Please wait before trying again",
				english.Plural(int(interval), "second", ""), u.quota.limit)
		}

		u.quota.count++
		u.lastActionTs = time.Now()

		return nil
	}

	u.quota.count = 1
	u.quota.ts = time.Now()
	u.lastActionTs = u.quota.ts

	return nil
}
