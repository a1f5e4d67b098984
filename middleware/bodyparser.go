package middleware

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/saiset-co/sai-http-stack/types"
	"github.com/saiset-co/sai-http-stack/utils"
)

// bodyParserEntry resolves the body parser in three states: a configured
// factory (constructed with the shared error funnel), an explicit disable
// (no default substitution), or the bundled default when the config is
// silent.
func (a *Assembler) bodyParserEntry() types.Entry {
	funnel := a.parseErrorFunnel()

	bp := a.config.HTTP.BodyParser
	switch {
	case bp == nil:
		return types.Use(DefaultBodyParser(funnel))
	case bp.Disabled:
		a.logger.Debug("Body parser explicitly disabled")
		return types.Disabled
	case bp.Factory != nil:
		return types.Use(bp.Factory(funnel))
	default:
		return types.Use(DefaultBodyParser(funnel))
	}
}

// parseErrorFunnel is the single error callback handed to whichever parser
// is chosen. Production mode suppresses the descriptive body unless the host
// opted to keep response errors; the log entry always carries the full
// detail and any available stack.
func (a *Assembler) parseErrorFunnel() types.ErrorHandler {
	production := a.env.Production
	keepErrors := a.config.KeepResponseErrors

	return func(err error, ctx *fasthttp.RequestCtx, _ types.Next) {
		msg := fmt.Sprintf("Unable to parse HTTP body :: %+v", err)

		a.logger.ErrorWithErrStack("Unable to parse HTTP body", err)
		a.countFailure("bodyParser")

		if production && !keepErrors {
			utils.SendClientError(ctx, fasthttp.StatusBadRequest, "")
			return
		}

		utils.SendClientError(ctx, fasthttp.StatusBadRequest, msg)
	}
}

// DefaultBodyParser decodes JSON and urlencoded-form bodies into the
// parsedBody user value. Malformed input is routed through the funnel;
// unrecognized content types pass through untouched.
func DefaultBodyParser(funnel types.ErrorHandler) types.Handler {
	return func(ctx *fasthttp.RequestCtx, next types.Next) {
		body := ctx.PostBody()
		if len(body) == 0 {
			next(nil)
			return
		}

		contentType := utils.BytesToString(ctx.Request.Header.ContentType())

		switch {
		case strings.HasPrefix(contentType, "application/json"):
			var parsed interface{}
			if err := utils.Unmarshal(body, &parsed); err != nil {
				funnel(errors.Wrap(err, "invalid JSON body"), ctx, next)
				return
			}
			ctx.SetUserValue(CtxKeyBody, parsed)

		case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
			args := ctx.PostArgs()
			values := make(map[string]string, args.Len())
			args.VisitAll(func(key, value []byte) {
				values[string(key)] = string(value)
			})
			ctx.SetUserValue(CtxKeyBody, values)
		}

		next(nil)
	}
}
