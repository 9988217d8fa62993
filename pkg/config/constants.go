package config

// EnvPrefix is passed to envconfig; individual fields carry fully qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CROPCARE_DB_DSN"
	EnvDBHost = "CROPCARE_DB_HOST"
	EnvDBUser = "CROPCARE_DB_USER"
	EnvDBName = "CROPCARE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
