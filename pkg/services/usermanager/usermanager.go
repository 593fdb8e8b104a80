/*
2019 © Postgres.ai
*/

package usermanager

import (
	"sync"
	"time"

	"gitlab.com/postgres-ai/askdb/pkg/config"
)

// UserManager defines a user manager service.
type UserManager struct {
	QuotaConfig config.Quota

	usersMutex sync.RWMutex
	users      map[string]*User // ClientID -> User.
}

// NewUserManager creates a new user manager.
func NewUserManager(quotaCfg config.Quota) *UserManager {
	return &UserManager{
		QuotaConfig: quotaCfg,
		users:       make(map[string]*User),
	}
}

// Users returns the number of known users.
func (um *UserManager) Users() int {
	um.usersMutex.RLock()
	defer um.usersMutex.RUnlock()

	return len(um.users)
}

// CreateUser returns a known user or creates a new one.
func (um *UserManager) CreateUser(clientID string) *User {
	if user, ok := um.findUser(clientID); ok {
		return user
	}

	um.usersMutex.Lock()
	defer um.usersMutex.Unlock()

	if user, ok := um.users[clientID]; ok {
		return user
	}

	user := NewUser(clientID, Quota{
		ts:       time.Now(),
		limit:    um.QuotaConfig.Limit,
		interval: um.QuotaConfig.Interval,
	})

	um.users[clientID] = user

	return user
}

// RequestQuota checks the request limit of a client.
func (um *UserManager) RequestQuota(clientID string) error {
	return um.CreateUser(clientID).RequestQuota()
}

// RemoveIdleUsers forgets clients inactive for longer than maxIdle and returns their number.
// A client is kept at least until its quota window expires.
func (um *UserManager) RemoveIdleUsers(maxIdle time.Duration) int {
	if window := time.Duration(um.QuotaConfig.Interval) * time.Second; maxIdle < window {
		maxIdle = window
	}

	um.usersMutex.Lock()
	defer um.usersMutex.Unlock()

	removed := 0

	for clientID, user := range um.users {
		if time.Since(user.LastActionTs()) > maxIdle {
			delete(um.users, clientID)
			removed++
		}
	}

	return removed
}

func (um *UserManager) findUser(clientID string) (*User, bool) {
	um.usersMutex.RLock()
	user, ok := um.users[clientID]
	um.usersMutex.RUnlock()

	return user, ok
}
