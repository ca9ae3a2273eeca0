package config

const (
	// EnvPrefix namespaces every environment variable this service owns.
	EnvPrefix = "MEDIMART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv          = "MEDIMART_APP_ENV"
	EnvPort            = "MEDIMART_APP_PORT"
	EnvUpstreamBaseURL = "MEDIMART_UPSTREAM_BASE_URL"
	EnvRedisURL        = "MEDIMART_REDIS_URL"
	EnvJWTSecret       = "MEDIMART_JWT_SECRET"
	EnvJWTIssuer       = "MEDIMART_JWT_ISSUER"
	EnvDebounceWindow  = "MEDIMART_CART_DEBOUNCE_WINDOW"
)
