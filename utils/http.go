package utils

import "github.com/valyala/fasthttp"

// ResponseStarted reports whether an earlier stage already produced a
// response for this request. fasthttp buffers output until the handler
// chain returns, so "headers already sent" translates to "a status or body
// has been written": attempting a second response at that point would
// clobber the first one.
func ResponseStarted(ctx *fasthttp.RequestCtx) bool {
	if ctx.Response.IsBodyStream() {
		return true
	}
	if len(ctx.Response.Body()) > 0 {
		return true
	}
	return ctx.Response.StatusCode() != fasthttp.StatusOK
}

// SendClientError writes a 400-class response, replacing anything buffered.
func SendClientError(ctx *fasthttp.RequestCtx, status int, body string) {
	ctx.SetStatusCode(status)
	ctx.Response.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString(body)
}
