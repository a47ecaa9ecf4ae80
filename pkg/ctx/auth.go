package ctx

import (
	"context"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/api"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/stremio"
)

// authenticate flushes analytics, calls the account API, and (on
// success) concurrently pulls the addon collection and the full
// library, all inside one future so the eventual internalCtxAuthResult
// carries everything completeAuthenticate needs.
func (c *Ctx) authenticate(m ActionAuthenticate) effect.Effects {
	c.Status = StatusLoading
	c.authRequest = &m.Request

	future := func(fctx context.Context) effect.Msg {
		c.env.FlushAnalytics(fctx, "authenticate", map[string]interface{}{"method": m.Request.Method})

		var authResult api.AuthResult
		var err error
		if m.Request.Method == "register" {
			authResult, err = c.api.Register(fctx, m.Request.Email, m.Request.Password)
		} else {
			authResult, err = c.api.Login(fctx, m.Request.Email, m.Request.Password)
		}
		if err != nil {
			return internalCtxAuthResult{request: m.Request, err: err}
		}

		addonsCh := make(chan []stremio.Descriptor, 1)
		itemsCh := make(chan []stremio.LibraryItem, 1)
		errCh := make(chan error, 2)

		go func() {
			addons, err := c.api.AddonCollectionGet(fctx, authResult.Key, true)
			if err != nil {
				errCh <- err
				return
			}
			addonsCh <- addons
		}()
		go func() {
			items, err := c.api.DatastoreGet(fctx, authResult.Key, "libraryItem", nil, true)
			if err != nil {
				errCh <- err
				return
			}
			itemsCh <- items
		}()

		var addons []stremio.Descriptor
		var items []stremio.LibraryItem
		for i := 0; i < 2; i++ {
			select {
			case addons = <-addonsCh:
			case items = <-itemsCh:
			case err := <-errCh:
				return internalCtxAuthResult{request: m.Request, err: err}
			}
		}

		auth := &stremio.Auth{Key: authResult.Key, User: authResult.User}
		return internalCtxAuthResult{request: m.Request, auth: auth, addons: addons, items: items}
	}

	return effect.Future1(future)
}

// completeAuthenticate finishes the authentication sequence. A result
// for a request that is no longer c.authRequest is a stale arrival from
// a superseded Authenticate call and is discarded.
func (c *Ctx) completeAuthenticate(m internalCtxAuthResult) effect.Effects {
	if c.authRequest == nil || *c.authRequest != m.request {
		c.logger.Debug("ctx: discarding stale auth result")
		return effect.None
	}

	c.Status = StatusReady
	c.authRequest = nil

	if m.err != nil {
		return effect.Msg1(EventError{Err: &Error{Kind: ErrAPI, Err: m.err}, Source: "UserAuthenticated"})
	}

	uid := m.auth.User.ID
	c.Profile = stremio.Profile{Auth: m.auth, Addons: m.addons, Settings: stremio.DefaultSettings()}

	c.Library = stremio.NewLibraryBucket(uid)
	c.LibraryRecent = stremio.NewLibraryBucket(uid)
	for _, item := range m.items {
		c.insertLibraryItem(item)
	}
	c.Streams = stremio.NewStreamsBucket(uid)
	c.Notifications = stremio.NewNotificationsBucket(uid, c.env.Now())

	return effect.Merge(
		effect.SequentialFuture1("profile", c.flushProfileFuture()),
		effect.SequentialFuture1("library", c.flushLibraryFuture()),
		effect.Msg1(EventUserAuthenticated{Request: m.request}),
	)
}

// logout issues POST /api/logout fire-and-forget (its outcome is never
// observed) and clears local state unconditionally.
func (c *Ctx) logout() effect.Effects {
	uid := c.Profile.UID()
	authKey := ""
	if c.Profile.Auth != nil {
		authKey = c.Profile.Auth.Key
	}

	future := func(fctx context.Context) effect.Msg {
		if authKey != "" {
			if err := c.api.Logout(fctx, authKey); err != nil {
				c.logger.Warn("ctx: logout call failed, local state already cleared", zap.Error(err))
			}
		}
		return nil
	}

	c.Profile = stremio.Profile{Settings: stremio.DefaultSettings()}
	c.Library = stremio.NewLibraryBucket("")
	c.LibraryRecent = stremio.NewLibraryBucket("")
	c.Streams = stremio.NewStreamsBucket("")
	c.Notifications = stremio.NewNotificationsBucket("", c.env.Now())

	return effect.Merge(
		effect.Future1(future),
		effect.SequentialFuture1("profile", c.flushProfileFuture()),
		effect.Msg1(EventUserLoggedOut{UID: uid}),
	)
}
