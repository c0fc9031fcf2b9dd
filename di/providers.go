package di

import (
	"wellness/config"
	"wellness/infras/jwt"
)

// provideJWT verifies tokens from the identity provider with the shared access secret.
func provideJWT(cfg *config.Config) jwt.JWT {
	return jwt.New(cfg.JWT.AccessSecret, cfg.JWT.Issuer)
}
