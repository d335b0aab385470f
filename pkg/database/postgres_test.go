package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/class-scheduler-api/pkg/config"
)

func TestDSNDefaultsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "scheduler", Password: "pw", Name: "class_scheduler"})

	assert.Contains(t, dsn, "host=db port=5432")
	assert.Contains(t, dsn, "dbname=class_scheduler")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "application_name=class-scheduler-api")
}
