package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pescasolic/pkg/search/client"
)

func TestNewClient_BuildsAddressFromConfig(t *testing.T) {
	cfg := client.Config{
		Host:     "localhost",
		Port:     9200,
		Username: "admin",
		Password: "admin",
		UseSSL:   false,
	}

	c, err := client.NewClient(cfg, "test-dashboard")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "test-dashboard", c.GetIndex())
	assert.NotNil(t, c.GetClient())
}

func TestNewClient_UsesHTTPSWhenSSLEnabled(t *testing.T) {
	cfg := client.Config{Host: "opensearch.internal", Port: 9200, UseSSL: true}

	c, err := client.NewClient(cfg, "idx")
	require.NoError(t, err)
	assert.NotNil(t, c)
}
