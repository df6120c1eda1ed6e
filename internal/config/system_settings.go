package config

import (
	"os"
	"strconv"
)

const DATABASE_TYPE = "STEPFLOW_DATABASE_TYPE"
const DATABASE_URL = "STEPFLOW_DATABASE_URL"
const DATABASE_SQLLITE_FILE_NAME = "STEPFLOW_DATABASE_SQLLITE_FILE_NAME"
const SERVER_WEB_PORT = "STEPFLOW_SERVER_WEB_PORT"
const SERVER_SHUTDOWN_TIMEOUT = "STEPFLOW_SERVER_SHUTDOWN_TIMEOUT"
const API_KEY_HASH = "STEPFLOW_API_KEY_HASH" // bcrypt hash of the api key, auth is disabled when empty
const NATS_URL = "STEPFLOW_NATS_URL"         // run records are published when set
const NATS_SUBJECT_PREFIX = "STEPFLOW_NATS_SUBJECT_PREFIX"
const LOG_LEVEL = "STEPFLOW_LOG_LEVEL"

const DATABASE_TYPE_MEMORY = "MEMORY"
const DATABASE_TYPE_POSTGRES = "POSTGRES"
const DATABASE_TYPE_MYSQL = "MYSQL"
const DATABASE_TYPE_SQLLITE = "SQLLITE"

func GetSystemSettingInteger(settingKey string) int {
	val := GetSystemSettingString(settingKey)
	if val != "" {
		intValue, _ := strconv.Atoi(val)
		return intValue
	}
	return 0
}

func GetSystemSettingString(settingKey string) string {
	val := os.Getenv(settingKey)
	if val != "" {
		return val
	}
	switch settingKey {
	case DATABASE_TYPE:
		return DATABASE_TYPE_MEMORY
	case SERVER_WEB_PORT:
		return "8080"
	case SERVER_SHUTDOWN_TIMEOUT:
		return "10s"
	case DATABASE_SQLLITE_FILE_NAME:
		return "./stepflow.db"
	case NATS_SUBJECT_PREFIX:
		return "stepflow.runs"
	case LOG_LEVEL:
		return "INFO"
	}
	return ""
}

// IsSQLDatabase reports whether the configured store is backed by database/sql.
func IsSQLDatabase() bool {
	switch GetSystemSettingString(DATABASE_TYPE) {
	case DATABASE_TYPE_POSTGRES, DATABASE_TYPE_MYSQL, DATABASE_TYPE_SQLLITE:
		return true
	}
	return false
}
