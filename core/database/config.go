package database

import (
	coreconfig "github.com/lknvpn/supportbot/core/config"
)

// Config is the database section of the application config. The struct
// itself is declared in core/config; the alias keeps a package-local
// name for the connect and migrate helpers.
type Config = coreconfig.DatabaseConfig
