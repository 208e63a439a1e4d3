// Package util provides shared logging, HTTP and error helpers
package util

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// Shared HTTP clients with connection pooling. Manifest fetches are small
// text documents issued in bursts (one per detected stream), so the pool is
// tuned for many short concurrent requests against a handful of hosts.
var (
	sharedClient     *http.Client
	sharedClientOnce sync.Once

	// fastClient is used for page sniffing where a slow host should not
	// stall the whole pipeline
	fastClient     *http.Client
	fastClientOnce sync.Once
)

// httpClientConfig holds configuration for creating pooled HTTP clients
type httpClientConfig struct {
	timeout             time.Duration
	maxIdleConns        int
	maxIdleConnsPerHost int
	maxConnsPerHost     int
	idleConnTimeout     time.Duration
	tlsHandshakeTimeout time.Duration
	expectContinue      time.Duration
	keepAlive           time.Duration
	dialTimeout         time.Duration
}

func defaultConfig() httpClientConfig {
	return httpClientConfig{
		timeout:             30 * time.Second,
		maxIdleConns:        100,
		maxIdleConnsPerHost: 16,
		maxConnsPerHost:     32,
		idleConnTimeout:     120 * time.Second,
		tlsHandshakeTimeout: 5 * time.Second,
		expectContinue:      1 * time.Second,
		keepAlive:           30 * time.Second,
		dialTimeout:         5 * time.Second,
	}
}

func fastConfig() httpClientConfig {
	return httpClientConfig{
		timeout:             15 * time.Second,
		maxIdleConns:        50,
		maxIdleConnsPerHost: 8,
		maxConnsPerHost:     16,
		idleConnTimeout:     90 * time.Second,
		tlsHandshakeTimeout: 5 * time.Second,
		expectContinue:      500 * time.Millisecond,
		keepAlive:           30 * time.Second,
		dialTimeout:         5 * time.Second,
	}
}

// createTransport creates a pooled HTTP transport with the given config
func createTransport(cfg httpClientConfig) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.dialTimeout,
			KeepAlive: cfg.keepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.maxConnsPerHost,
		IdleConnTimeout:       cfg.idleConnTimeout,
		TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
		ExpectContinueTimeout: cfg.expectContinue,
	}
}

// SharedHTTPClient returns the process-wide pooled HTTP client used for
// manifest fetches.
func SharedHTTPClient() *http.Client {
	sharedClientOnce.Do(func() {
		sharedClient = &http.Client{
			Timeout:   defaultConfig().timeout,
			Transport: createTransport(defaultConfig()),
		}
	})
	return sharedClient
}

// FastHTTPClient returns a client with shorter timeouts for page sniffing.
func FastHTTPClient() *http.Client {
	fastClientOnce.Do(func() {
		fastClient = &http.Client{
			Timeout:   fastConfig().timeout,
			Transport: createTransport(fastConfig()),
		}
	})
	return fastClient
}
