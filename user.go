package spotted

import (
	"github.com/hashicorp/golang-lru"
	"github.com/nlopes/slack"
	"github.com/spf13/viper"
	"github.com/spottedbot/spotted/config"
)

// UserInfoFinder defines the interface for finding a slack user's info
type UserInfoFinder interface {
	GetUserInfo(userID string) (user *slack.User, err error)
}

// cachingUserInfoFinder holds a cache and a loading UserInfoFinder to
// implement the UserInfoFinder loading entries from cache. Spots query user
// info for the poster and every target so caching keeps reconciliation from
// hammering the slack api
type cachingUserInfoFinder struct {
	loader        UserInfoFinder
	log           SLogger
	userInfoCache *lru.ARCCache
}

// NewCachingUserInfoFinder creates a new user info finder with caching if
// enabled via config.UserInfoCacheSizeKey. It requires an implementation of
// the interface that does the actual loading on cache misses
func NewCachingUserInfoFinder(v *viper.Viper, loader UserInfoFinder, log SLogger) (uf UserInfoFinder, err error) {
	cuf := new(cachingUserInfoFinder)

	cacheSize := v.GetInt(config.UserInfoCacheSizeKey)
	if cacheSize > 0 {
		cuf.userInfoCache, err = lru.NewARC(cacheSize)
		if err != nil {
			return nil, err
		}
	}

	cuf.loader = loader
	cuf.log = log

	return cuf, nil
}

// GetUserInfo gets the user info from cache, if present, or from the loader
func (c cachingUserInfoFinder) GetUserInfo(userID string) (u *slack.User, err error) {
	if c.userInfoCache == nil {
		return c.loader.GetUserInfo(userID)
	}

	if cached, exists := c.userInfoCache.Get(userID); exists {
		user, ok := cached.(slack.User)
		if ok {
			return &user, nil
		}

		c.log.Debugf("Discarding unexpected cached value for user id [%s]", userID)
	}

	u, err = c.loader.GetUserInfo(userID)
	if err != nil {
		return nil, err
	}

	c.userInfoCache.Add(userID, *u)

	return u, nil
}

// displayName resolves a user's display name best-effort, falling back to the
// raw user id. It never fails: a missing name must not block scoring
func displayName(uf UserInfoFinder, userID string) (name string) {
	if uf == nil {
		return userID
	}

	u, err := uf.GetUserInfo(userID)
	if err != nil || u == nil {
		return userID
	}

	switch {
	case u.Profile.DisplayName != "":
		return u.Profile.DisplayName
	case u.RealName != "":
		return u.RealName
	case u.Name != "":
		return u.Name
	}

	return userID
}
