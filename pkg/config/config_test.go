package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"kubetodo/pkg/config"
)

func TestConfig_Defaults(t *testing.T) {
	RegisterTestingT(t)

	cfg := config.GetDefaultConfig()

	Expect(cfg.Port).To(Equal("8080"))
	Expect(cfg.DatabaseDriver).To(Equal("sqlite"))
	Expect(cfg.CacheEnabled).To(BeFalse())
	Expect(cfg.CacheConfigs).To(HaveKey("/api/todos"))
	Expect(cfg.RateLimitConfigs["/api/todos"].Requests).To(Equal(100))
}

func TestConfig_EnvOverrides(t *testing.T) {
	RegisterTestingT(t)

	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://example/db")
	t.Setenv("CACHE_ENABLED", "true")

	cfg, err := config.Load()

	Expect(err).To(BeNil())
	Expect(cfg.Port).To(Equal("9999"))
	Expect(cfg.DatabaseDriver).To(Equal("postgres"))
	Expect(cfg.DatabaseURL).To(Equal("postgres://example/db"))
	Expect(cfg.CacheEnabled).To(BeTrue())
}

func TestConfig_YAMLOverlayThenEnvWins(t *testing.T) {
	RegisterTestingT(t)

	path := filepath.Join(t.TempDir(), "config.yaml")

	yaml := []byte("environment: staging\nport: \"7070\"\ncaches:\n  /api/todos:\n    ttl: 5s\n    enabled: true\n")
	Expect(os.WriteFile(path, yaml, 0o644)).To(Succeed())

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7071")

	cfg, err := config.Load()

	Expect(err).To(BeNil())
	Expect(cfg.Environment).To(Equal("staging"))
	Expect(cfg.Port).To(Equal("7071"))
	Expect(cfg.CacheConfigs["/api/todos"].TTL).To(Equal(5 * time.Second))
}
