package middleware

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/saiset-co/sai-http-stack/types"
)

// PoweredByValue is the fixed X-Powered-By response header.
const PoweredByValue = "Sai HTTP Stack"

//go:embed assets/favicon.ico
var defaultFavicon []byte

const ctxKeyStaticMiss = "staticMiss"

// wwwEntry serves flat files from the public root. Always present; misses
// fall through to the next stage instead of producing a 404 here.
func (a *Assembler) wwwEntry() types.Entry {
	cache := a.config.HTTP.Cache

	fs := &fasthttp.FS{
		Root:            a.config.Paths.Public,
		IndexNames:      []string{"index.html"},
		AcceptByteRange: true,
		CacheDuration:   cache,
		PathNotFound: func(ctx *fasthttp.RequestCtx) {
			ctx.SetUserValue(ctxKeyStaticMiss, true)
		},
	}
	fileHandler := fs.NewRequestHandler()

	cacheControl := fmt.Sprintf("public, max-age=%d", int(cache.Seconds()))

	return types.Use(func(ctx *fasthttp.RequestCtx, next types.Next) {
		if !ctx.IsGet() && !ctx.IsHead() {
			next(nil)
			return
		}

		fileHandler(ctx)

		if ctx.UserValue(ctxKeyStaticMiss) != nil {
			ctx.SetUserValue(ctxKeyStaticMiss, nil)
			// fasthttp stamps a 404 before calling PathNotFound; undo it so
			// later stages see an untouched response.
			ctx.SetStatusCode(fasthttp.StatusOK)
			next(nil)
			return
		}

		ctx.Response.Header.Set("Cache-Control", cacheControl)
	})
}

// faviconEntry serves the bundled default icon. Always present.
func (a *Assembler) faviconEntry() types.Entry {
	return types.Use(func(ctx *fasthttp.RequestCtx, next types.Next) {
		if string(ctx.Path()) != "/favicon.ico" {
			next(nil)
			return
		}

		ctx.SetContentType("image/x-icon")
		ctx.Response.Header.Set("Cache-Control", "public, max-age=86400")
		ctx.SetBody(defaultFavicon)
	})
}

// startRequestTimerEntry stamps the request with its arrival time (and a
// request id) for latency measurement by downstream collaborators. Skipped
// in production.
func (a *Assembler) startRequestTimerEntry() types.Entry {
	if a.env.Production {
		return types.Disabled
	}

	return types.Use(func(ctx *fasthttp.RequestCtx, next types.Next) {
		ctx.SetUserValue(CtxKeyRequestStart, time.Now())

		requestID := string(ctx.Request.Header.Peek("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.SetUserValue(CtxKeyRequestID, requestID)

		next(nil)
	})
}

// methodOverrideEntry is present only when the host configured a factory.
func (a *Assembler) methodOverrideEntry() types.Entry {
	factory := a.config.HTTP.MethodOverride
	if factory == nil {
		return types.Disabled
	}
	return types.Use(factory())
}

func (a *Assembler) poweredByEntry() types.Entry {
	return types.Use(func(ctx *fasthttp.RequestCtx, next types.Next) {
		ctx.Response.Header.Set("X-Powered-By", PoweredByValue)
		next(nil)
	})
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if v, ok := ctx.UserValue(CtxKeyRequestID).(string); ok {
		return v
	}
	// Copy: the event payload may outlive the request buffers.
	return string(ctx.Request.Header.Peek("X-Request-ID"))
}
