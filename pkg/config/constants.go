package config

// EnvPrefix is applied by envconfig on top of the explicit variable names.
const EnvPrefix = "nakawin"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "NAKAWIN_APP_ENV"
	EnvDBDSN  = "NAKAWIN_DB_DSN"
	EnvDBHost = "NAKAWIN_DB_HOST"
	EnvDBUser = "NAKAWIN_DB_USER"
	EnvDBName = "NAKAWIN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
