package middleware

import (
	"github.com/saiset-co/sai-http-stack/types"
)

// cookieParserEntry selects the parser factory from an ordered list of
// candidate locations (the current key first, the legacy key second) and
// binds it to the session secret when one is present.
//
// A non-string secret is a programming or configuration error and fails
// assembly outright. No secret at all is a deliberate fallback: cookie
// parsing stays usable, unsigned, when the session subsystem is off.
func (a *Assembler) cookieParserEntry() (types.Entry, error) {
	factory := a.config.HTTP.CookieParser
	if factory == nil && a.config.Legacy != nil {
		factory = a.config.Legacy.CookieParser
	}

	if factory == nil {
		a.logger.Debug("No cookie parser configured, cookie parsing disabled")
		return types.Disabled, nil
	}

	secret := ""
	if a.config.Session != nil && a.config.Session.Secret != nil {
		s, ok := a.config.Session.Secret.(string)
		if !ok {
			return types.Disabled, types.Errorf(types.ErrSessionSecretInvalid,
				"got %T", a.config.Session.Secret)
		}
		secret = s
	}

	if secret == "" {
		a.logger.Debug("No session secret present, cookies will be parsed unsigned")
	}

	return types.Use(factory(secret)), nil
}
