package types

import "github.com/valyala/fasthttp"

// Entry names recognized by the assembler. Every assembled registry contains
// exactly these keys.
const (
	EntryStartRequestTimer = "startRequestTimer"
	EntryCookieParser      = "cookieParser"
	EntrySession           = "session"
	EntryBodyParser        = "bodyParser"
	EntryCompress          = "compress"
	EntryMethodOverride    = "methodOverride"
	EntryPoweredBy         = "poweredBy"
	EntryWWW               = "www"
	EntryFavicon           = "favicon"
	EntryNotFound          = "404"
	EntryServerError       = "500"

	// EntryRouter is an ordering slot for the host's own routes. It is never
	// a registry key.
	EntryRouter = "router"
)

// Next passes control to the following pipeline stage. Calling it with a nil
// error stays on the normal path; a non-nil error skips forward to the next
// error-shaped entry. A stage must invoke it at most once.
type Next func(err error)

type Handler func(ctx *fasthttp.RequestCtx, next Next)

type ErrorHandler func(err error, ctx *fasthttp.RequestCtx, next Next)

// Entry is a named slot in the registry: a normal handler, an error-shaped
// handler, or disabled. Disabled entries stay in the registry so a key never
// disappears between assemblies; the pipeline builder skips them.
type Entry struct {
	Handler      Handler
	ErrorHandler ErrorHandler
	Enabled      bool
}

// Disabled marks an entry the pipeline must skip.
var Disabled = Entry{}

func Use(h Handler) Entry {
	return Entry{Handler: h, Enabled: true}
}

func Catch(h ErrorHandler) Entry {
	return Entry{ErrorHandler: h, Enabled: true}
}

// Registry is the named middleware mapping produced by one assembly call.
// It is immutable after construction; the caller owns it.
type Registry map[string]Entry

// Overrides is the caller-supplied subset of entries. A key present here wins
// verbatim over the built-in, including an explicitly Disabled value.
type Overrides map[string]Entry

// EntryNames returns the recognized registry keys in install order.
func EntryNames() []string {
	return []string{
		EntryStartRequestTimer,
		EntryCookieParser,
		EntrySession,
		EntryBodyParser,
		EntryCompress,
		EntryMethodOverride,
		EntryPoweredBy,
		EntryWWW,
		EntryFavicon,
		EntryNotFound,
		EntryServerError,
	}
}

// HandlerFactory builds a middleware with no arguments (methodOverride).
type HandlerFactory func() Handler

// BodyParserFactory builds a body-parsing middleware wired to the shared
// error funnel.
type BodyParserFactory func(funnel ErrorHandler) Handler

// CookieParserFactory builds a cookie-parsing middleware. A non-empty secret
// enables signed cookies; an empty secret yields unsigned parsing.
type CookieParserFactory func(secret string) Handler

// SessionHandler is the externally configured session middleware. It must
// invoke complete exactly once, with a nil error on success.
type SessionHandler func(ctx *fasthttp.RequestCtx, complete func(err error))
