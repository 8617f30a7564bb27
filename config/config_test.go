package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, Info, cfg.LogLevel)
	assert.Equal(t, SessionStoreCookie, cfg.Session.Store)
	assert.Equal(t, 60, cfg.Session.MaxAge)
	assert.Equal(t, DatabaseTypeSQLite, cfg.Database.Type)
	assert.Equal(t, "/etc/campus-panel/campus-panel.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 90, cfg.AuditRetentionDays)
	assert.Equal(t, "/", cfg.NormalizedBasePath())
}

func TestLoadDebugForcesDebugLevel(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"CAMPUS_DEBUG":     "true",
		"CAMPUS_LOG_LEVEL": "error",
	}))
	require.NoError(t, err)
	assert.Equal(t, Debug, cfg.LogLevel)
	assert.Equal(t, "db/campus-panel.db", cfg.Database.SQLite.Path)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"log level":     {"CAMPUS_LOG_LEVEL": "loud"},
		"session store": {"CAMPUS_SESSION_STORE": "memcached"},
		"port":          {"CAMPUS_PORT": "70000"},
		"db type":       {"CAMPUS_DB_TYPE": "oracle"},
		"time location": {"CAMPUS_TIME_LOCATION": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

func TestNormalizedBasePath(t *testing.T) {
	c := &Config{BasePath: "campus"}
	assert.Equal(t, "/campus/", c.NormalizedBasePath())
}

func TestPostgresDSN(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"CAMPUS_DB_TYPE":     "postgres",
		"CAMPUS_PG_HOST":     "db.internal",
		"CAMPUS_PG_PASSWORD": "s3cret",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.Database.IsPostgreSQL())
	assert.Equal(t,
		"host=db.internal user=campus password=s3cret dbname=campus port=5432 sslmode=disable TimeZone=UTC",
		cfg.Database.GetDSN())
}
