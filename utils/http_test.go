package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestResponseStarted(t *testing.T) {
	var fresh fasthttp.RequestCtx
	assert.False(t, ResponseStarted(&fresh))

	var withBody fasthttp.RequestCtx
	withBody.SetBodyString("partial output")
	assert.True(t, ResponseStarted(&withBody))

	var withStatus fasthttp.RequestCtx
	withStatus.SetStatusCode(fasthttp.StatusNoContent)
	assert.True(t, ResponseStarted(&withStatus))
}

func TestSendClientError(t *testing.T) {
	var ctx fasthttp.RequestCtx
	SendClientError(&ctx, fasthttp.StatusBadRequest, "bad input")

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, "bad input", string(ctx.Response.Body()))
	assert.Equal(t, "no-cache, no-store, must-revalidate", string(ctx.Response.Header.Peek("Cache-Control")))
}
