package util

import (
	"os"
	"strconv"
	"strings"
)

const EnvironmentPrefix = "RAILCOMMUTE_"

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// EnvironmentString returns RAILCOMMUTE_<name> or the fallback when it is unset
func EnvironmentString(env map[string]string, name string, fallback string) string {
	if value := env[EnvironmentPrefix+name]; value != "" {
		return value
	}

	return fallback
}

func EnvironmentInt(env map[string]string, name string, fallback int) (int, error) {
	value := env[EnvironmentPrefix+name]
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

func EnvironmentFlag(env map[string]string, name string) bool {
	return strings.EqualFold(env[EnvironmentPrefix+name], "YES")
}
