package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// OverrideEnvVar names a .env file that wins over the --env flag.
const OverrideEnvVar = "TRANSPOP_ENV_FILE"

// EnvLoader loads .env files with a predictable override order.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *pflag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = pflag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description)
	return &EnvLoader{
		value:       value,
		defaultPath: defaultPath,
	}
}

// Load resolves and loads environment variables using the configured flag
// value. A missing default file is not an error; a missing explicit file is.
func (l *EnvLoader) Load(logger zerolog.Logger) (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	if custom := strings.TrimSpace(os.Getenv(OverrideEnvVar)); custom != "" {
		if err := godotenv.Overload(custom); err == nil {
			logger.Debug().Str("source", OverrideEnvVar).Str("path", custom).Msg("loaded environment")
			return custom, nil
		}
		logger.Warn().Str("source", OverrideEnvVar).Str("path", custom).Msg("failed to load env file")
	}

	requested := strings.TrimSpace(derefString(l.value))
	if requested == "" {
		requested = l.defaultPath
	}

	if err := godotenv.Overload(requested); err == nil {
		logger.Debug().Str("path", requested).Msg("loaded environment")
		return requested, nil
	}

	base := filepath.Base(requested)
	if base != "" && base != requested {
		if err := godotenv.Overload(base); err == nil {
			logger.Debug().Str("path", base).Msg("loaded environment from basename fallback")
			return base, nil
		}
	}

	if requested != l.defaultPath {
		if err := godotenv.Overload(l.defaultPath); err == nil {
			logger.Debug().Str("path", l.defaultPath).Msg("loaded environment from fallback")
			return l.defaultPath, nil
		}
		return "", fmt.Errorf("failed to load env file from %s", requested)
	}

	return "", nil
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
