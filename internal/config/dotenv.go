package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppEnv returns APP_ENV from the process environment, "local" when unset.
// It is read before any .env file so it picks which files load.
func AppEnv() string {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		return "local"
	}
	return env
}

// LoadDotEnv loads .env files with priority:
// .env.<env>.local > .env.<env> > .env.local > .env
// godotenv.Load does NOT overwrite already-set env vars, so OS env vars always win
// and earlier files win over later ones. Returns list of files actually loaded.
func LoadDotEnv(env string) []string {
	var candidates []string
	if env != "" && !strings.ContainsAny(env, `/\`) {
		candidates = append(candidates, ".env."+env+".local", ".env."+env)
	}
	candidates = append(candidates, ".env.local", ".env")

	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
