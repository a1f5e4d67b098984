package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/saiset-co/sai-http-stack/types"
)

func compressibleCtx(acceptEncoding string) (*fasthttp.RequestCtx, string) {
	payload := strings.Repeat(`{"key":"value"},`, 200)

	ctx := getCtx("/data")
	ctx.Request.Header.Set(fasthttp.HeaderAcceptEncoding, acceptEncoding)
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetBodyString(payload)
	return ctx, payload
}

func TestCompressDisabledInDevelopment(t *testing.T) {
	a := newTestAssembler(t, testConfig(), types.Environment{Production: false})
	assert.False(t, a.compressEntry().Enabled)
}

func TestCompressGzipRoundTrip(t *testing.T) {
	a := newTestAssembler(t, testConfig(), types.Environment{Production: true})
	entry := a.compressEntry()
	require.True(t, entry.Enabled)

	ctx, payload := compressibleCtx("gzip, deflate")
	entry.Handler(ctx, func(err error) {})

	assert.Equal(t, "gzip", string(ctx.Response.Header.ContentEncoding()))
	assert.Equal(t, fasthttp.HeaderAcceptEncoding, string(ctx.Response.Header.Peek(fasthttp.HeaderVary)))
	assert.Less(t, len(ctx.Response.Body()), len(payload))

	r, err := gzip.NewReader(bytes.NewReader(ctx.Response.Body()))
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, string(decoded))
}

func TestCompressPrefersBrotli(t *testing.T) {
	a := newTestAssembler(t, testConfig(), types.Environment{Production: true})
	entry := a.compressEntry()

	ctx, payload := compressibleCtx("gzip, br")
	entry.Handler(ctx, func(err error) {})

	assert.Equal(t, "br", string(ctx.Response.Header.ContentEncoding()))

	decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(ctx.Response.Body())))
	require.NoError(t, err)
	assert.Equal(t, payload, string(decoded))
}

func TestCompressSkipsSmallBodies(t *testing.T) {
	a := newTestAssembler(t, testConfig(), types.Environment{Production: true})
	entry := a.compressEntry()

	ctx := getCtx("/small")
	ctx.Request.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetBodyString(`{"ok":true}`)

	entry.Handler(ctx, func(err error) {})

	assert.Empty(t, ctx.Response.Header.ContentEncoding())
	assert.Equal(t, `{"ok":true}`, string(ctx.Response.Body()))
}

func TestCompressSkipsNonCompressibleTypes(t *testing.T) {
	a := newTestAssembler(t, testConfig(), types.Environment{Production: true})
	entry := a.compressEntry()

	ctx := getCtx("/image")
	ctx.Request.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")
	ctx.Response.Header.SetContentType("image/png")
	ctx.Response.SetBodyString(strings.Repeat("x", 2048))

	entry.Handler(ctx, func(err error) {})

	assert.Empty(t, ctx.Response.Header.ContentEncoding())
}

func TestCompressSkipsWithoutAcceptEncoding(t *testing.T) {
	a := newTestAssembler(t, testConfig(), types.Environment{Production: true})
	entry := a.compressEntry()

	ctx, payload := compressibleCtx("")
	entry.Handler(ctx, func(err error) {})

	assert.Empty(t, ctx.Response.Header.ContentEncoding())
	assert.Equal(t, payload, string(ctx.Response.Body()))
}

func TestNegotiateEncoding(t *testing.T) {
	assert.Equal(t, "br", negotiateEncoding("gzip, br, deflate"))
	assert.Equal(t, "gzip", negotiateEncoding("gzip, deflate"))
	assert.Equal(t, "", negotiateEncoding("identity"))
}
