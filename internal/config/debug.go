package config

import (
	"os"
	"strconv"
)

// IsDebug reports whether KELLY_DEBUG asks for debug logging. It is read before the
// rest of the configuration so that configuration errors are logged too.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("KELLY_DEBUG"))
	return debug
}
