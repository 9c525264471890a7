package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// RedisTLS builds a client *tls.Config for the rate limit store.
// Returns nil, nil if no client cert is configured; a rediss:// URL still
// gets server-verified TLS from the driver in that case.
func (c *Config) RedisTLS() (*tls.Config, error) {
	if c.RedisTLSCert == "" && c.RedisTLSKey == "" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(c.RedisTLSCert, c.RedisTLSKey)
	if err != nil {
		return nil, fmt.Errorf("load redis client cert: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if c.RedisTLSCACert != "" {
		caPEM, err := os.ReadFile(c.RedisTLSCACert)
		if err != nil {
			return nil, fmt.Errorf("read redis CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("failed to parse redis CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	if c.RedisTLSServerName != "" {
		tlsConfig.ServerName = c.RedisTLSServerName
	}

	return tlsConfig, nil
}
