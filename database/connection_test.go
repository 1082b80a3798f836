package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hanapp-ph/hanapp-backend/internal/config"
)

func TestDSN(t *testing.T) {
	local := config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres", Password: "pw", Name: "hanapp", SSLMode: "disable",
	}
	assert.Equal(t, "host=localhost user=postgres password=pw dbname=hanapp port=5432 sslmode=disable", DSN(local))

	cloud := local
	cloud.InstanceConnectionName = "proj:asia-southeast1:hanapp"
	assert.Equal(t, "host=/cloudsql/proj:asia-southeast1:hanapp user=postgres password=pw dbname=hanapp sslmode=disable", DSN(cloud))
}
