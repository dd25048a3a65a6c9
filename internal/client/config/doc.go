// Package config loads runtime configuration for the carbuyer CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, if present.
//  3. Environment: CARBUYER_API_URL (or API_URL, NEXT_PUBLIC_API_URL),
//     CARBUYER_DB, CARBUYER_LOG_LEVEL.
//  4. A JSON or YAML file selected with -c or -config:
//
//     api_url: http://localhost:8080/api/v1
//     database_path: carbuyer.db
//     online_check_interval: 30s
//     request_timeout: 0s
//     log_level: info
//
//  5. Flags -a (API url), -d (database path), -i (online check interval in
//     seconds) and -l (log level).
package config
