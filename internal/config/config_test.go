package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:              "development",
		Port:             "8080",
		DBDriver:         "postgres",
		DBSSLMode:        "require",
		DBPassword:       "secure-password",
		JWTSecret:        "secure-secret-at-least-32-chars-long",
		StorageDriver:    "local",
		StorageLocalDir:  "./uploads",
		StoragePublicURL: "http://localhost:8080/media",
		MediaMaxImageMB:  5,
		MediaMaxVideoMB:  50,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateStorage(t *testing.T) {
	c := validConfig()
	c.StorageDriver = "s3"
	assert.Error(t, c.Validate(), "s3 without a bucket must fail")

	c.S3Bucket = "media"
	assert.NoError(t, c.Validate())

	c.StorageDriver = "ftp"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateMediaLimits(t *testing.T) {
	c := validConfig()
	c.MediaMaxVideoMB = 0
	assert.Error(t, c.Validate())
}

func TestConfig_ProductionSecret(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = "your-secret-key-change-in-production"
	assert.Error(t, c.Validate())

	c.JWTSecret = "short"
	assert.Error(t, c.Validate())
}

func TestConfig_MediaBytes(t *testing.T) {
	c := validConfig()
	assert.Equal(t, int64(5<<20), c.MaxImageBytes())
	assert.Equal(t, int64(50<<20), c.MaxVideoBytes())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("STORAGE_PUBLIC_URL", "https://cdn.example.com/media/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "https://cdn.example.com/media", c.StoragePublicURL)
	assert.Equal(t, 5, c.MediaMaxImageMB)
	assert.Equal(t, "local", c.StorageDriver)
}
