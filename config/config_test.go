package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullConfig() Config {
	var c Config
	c.Repositories.Postgres.Host = "localhost"
	c.Repositories.Postgres.Username = "postgres"
	c.Repositories.Postgres.DB = "geomapa"
	c.Auth.GoogleClientID = "client-id"
	c.Auth.SessionSecret = "secret"
	c.Media.CloudName = "cloud"
	c.Media.APIKey = "key"
	c.Media.APISecret = "api-secret"
	return c
}

func TestValidate(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		assert.NoError(t, fullConfig().Validate())
	})

	t.Run("MissingSessionSecret", func(t *testing.T) {
		c := fullConfig()
		c.Auth.SessionSecret = ""
		err := c.Validate()
		assert.ErrorContains(t, err, "auth.sessionSecret")
	})

	t.Run("MissingGoogleClientID", func(t *testing.T) {
		c := fullConfig()
		c.Auth.GoogleClientID = ""
		assert.Error(t, c.Validate())
	})

	t.Run("MissingCloudinaryCredentials", func(t *testing.T) {
		c := fullConfig()
		c.Media.APISecret = ""
		assert.Error(t, c.Validate())
	})

	t.Run("MissingDatabase", func(t *testing.T) {
		c := fullConfig()
		c.Repositories.Postgres.Host = ""
		assert.Error(t, c.Validate())
	})
}
