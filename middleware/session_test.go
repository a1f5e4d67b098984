package middleware

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/saiset-co/sai-http-stack/types"
)

func TestSessionDisabledWithoutCapability(t *testing.T) {
	config := testConfig()
	config.Session = &types.SessionConfig{
		Handler: func(ctx *fasthttp.RequestCtx, complete func(err error)) {
			complete(nil)
		},
	}

	a := newTestAssembler(t, config, types.Environment{SessionEnabled: false})

	entry := a.sessionEntry()
	assert.False(t, entry.Enabled)
}

func TestSessionDisabledWithoutHandler(t *testing.T) {
	config := testConfig()
	config.Hooks.Session = true

	a := newTestAssembler(t, config, types.Environment{SessionEnabled: true})

	entry := a.sessionEntry()
	assert.False(t, entry.Enabled)
}

func TestSessionSuccessContinuesChain(t *testing.T) {
	config := testConfig()
	config.Hooks.Session = true
	config.Session = &types.SessionConfig{
		Handler: func(ctx *fasthttp.RequestCtx, complete func(err error)) {
			ctx.SetUserValue("sessionLoaded", true)
			complete(nil)
		},
	}

	a := newTestAssembler(t, config, types.Environment{SessionEnabled: true})

	entry := a.sessionEntry()
	require.True(t, entry.Enabled)
	require.NotNil(t, entry.Handler)

	var ctx fasthttp.RequestCtx
	nextCalled := false
	entry.Handler(&ctx, func(err error) {
		nextCalled = true
		assert.NoError(t, err)
	})

	assert.True(t, nextCalled)
	assert.Equal(t, true, ctx.UserValue("sessionLoaded"))
}

func TestSessionFailureSends400(t *testing.T) {
	config := testConfig()
	config.Hooks.Session = true
	config.Session = &types.SessionConfig{
		Handler: func(ctx *fasthttp.RequestCtx, complete func(err error)) {
			complete(errors.New("session store unreachable"))
		},
	}

	a := newTestAssembler(t, config, types.Environment{SessionEnabled: true})
	entry := a.sessionEntry()
	require.True(t, entry.Enabled)

	var ctx fasthttp.RequestCtx
	nextCalled := false
	entry.Handler(&ctx, func(err error) { nextCalled = true })

	assert.False(t, nextCalled)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "session store unreachable")
}

func TestSessionFailureVerboseInProduction(t *testing.T) {
	config := testConfig()
	config.Hooks.Session = true
	config.Session = &types.SessionConfig{
		Handler: func(ctx *fasthttp.RequestCtx, complete func(err error)) {
			complete(errors.New("session store unreachable"))
		},
	}

	a := newTestAssembler(t, config, types.Environment{Production: true, SessionEnabled: true})
	entry := a.sessionEntry()
	require.True(t, entry.Enabled)

	var ctx fasthttp.RequestCtx
	entry.Handler(&ctx, func(err error) {})

	assert.Contains(t, string(ctx.Response.Body()), "session store unreachable")
}

func TestSessionFailureAfterResponseStarted(t *testing.T) {
	config := testConfig()
	config.Hooks.Session = true
	config.Session = &types.SessionConfig{
		Handler: func(ctx *fasthttp.RequestCtx, complete func(err error)) {
			ctx.SetStatusCode(fasthttp.StatusForbidden)
			ctx.SetBodyString("already answered")
			complete(errors.New("late failure"))
		},
	}

	a := newTestAssembler(t, config, types.Environment{SessionEnabled: true})
	entry := a.sessionEntry()
	require.True(t, entry.Enabled)

	var ctx fasthttp.RequestCtx
	nextCalled := false
	entry.Handler(&ctx, func(err error) { nextCalled = true })

	assert.False(t, nextCalled)
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
	assert.Equal(t, "already answered", string(ctx.Response.Body()))
}
