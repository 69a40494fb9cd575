// Package client wraps the OpenSearch client construction the teacher's
// own inspection tool expects but never defined.
package client

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"
)

// Config is the subset of internal/config.OpenSearchConfig this package
// needs, kept narrow so it has no import-cycle back into internal/config.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	UseSSL   bool
	// Addresses overrides Host/Port when set, letting tests point the
	// client at a local httptest.Server instead of a real cluster.
	Addresses []string
}

// Client wraps the raw opensearch-go client plus the configured index
// name every dashboard query targets.
type Client struct {
	raw   *opensearch.Client
	Index string
}

func NewClient(cfg Config, index string) (*Client, error) {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	addresses := cfg.Addresses
	if len(addresses) == 0 {
		addresses = []string{fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)}
	}
	osCfg := opensearch.Config{
		Addresses: addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	if cfg.UseSSL {
		osCfg.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: false}}
	}

	raw, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Client{raw: raw, Index: index}, nil
}

func (c *Client) GetClient() *opensearch.Client {
	return c.raw
}

func (c *Client) GetIndex() string {
	return c.Index
}
