package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/courtstats/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courtstats.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader_Defaults(t *testing.T) {
	convey.Convey("Given no file and no environment", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then defaults are loaded", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.StoreDSN, convey.ShouldEqual, "courtstats.db")
			convey.So(cfg.Matches, convey.ShouldEqual, 100_000)
		})
	})
}

func TestConfigLoader_Env(t *testing.T) {
	t.Setenv("COURTSTATS_MATCHES", "2500")
	t.Setenv("COURTSTATS_WORKER_COUNT", "3")
	t.Setenv("COURTSTATS_STORE_DRIVER", "memory")
	t.Setenv("COURTSTATS_SEED", "99")

	convey.Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then they replace the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Matches, convey.ShouldEqual, 2500)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			convey.So(cfg.Seed, convey.ShouldEqual, 99)
		})
	})
}

func TestConfigLoader_FileThenEnv(t *testing.T) {
	path := writeConfigFile(t, `
players: 500
tournaments: 40
matches: 9000
worker_count: 6
store_dsn: "/tmp/from-file.db"
metrics_addr: ":9090"
`)
	t.Setenv("COURTSTATS_CONFIG", path)
	t.Setenv("COURTSTATS_WORKER_COUNT", "2")

	convey.Convey("Given a YAML file and an env override", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then env wins over file and file wins over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Players, convey.ShouldEqual, 500)
			convey.So(cfg.Tournaments, convey.ShouldEqual, 40)
			convey.So(cfg.Matches, convey.ShouldEqual, 9000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
			convey.So(cfg.StoreDSN, convey.ShouldEqual, "/tmp/from-file.db")
			convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9090")
			convey.So(cfg.BatchSize, convey.ShouldEqual, 1_000)
		})
	})
}

func TestConfigLoader_MissingFile(t *testing.T) {
	t.Setenv("COURTSTATS_CONFIG", "/non/existent/file.yaml")

	convey.Convey("Given a missing config file", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then loading fails", func() {
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader_InvalidYAML(t *testing.T) {
	t.Setenv("COURTSTATS_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

	convey.Convey("Given an invalid YAML file", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then loading fails", func() {
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader_OutOfRange(t *testing.T) {
	t.Setenv("COURTSTATS_CONFIG", "")
	t.Setenv("COURTSTATS_BATCH_SIZE", "0")

	convey.Convey("Given an out-of-range value and no config file", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then validation fails rather than loading", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeFalse)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
