package config

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// loadEnvFile loads .env and .env.local from dir when present so ${VAR} references in
// the config resolve. Existing process environment variables are never overridden.
func loadEnvFile(dir string) error {
	var present []string
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load environment file").
			Fatal().
			WithContext("dir", dir).
			Build()
	}
	return nil
}

var bracedVar = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references with their environment values. Bare $name
// sequences are left alone: the dynamic route marker [$path] uses that form.
func expandEnv(s string) string {
	return bracedVar.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(m[2 : len(m)-1])
	})
}
