package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

// healthcheck probes the API health endpoint from inside the container and
// exits non-zero unless it answers 200.
func main() {
	os.Exit(check())
}

const probeTimeout = 3 * time.Second

func check() int {
	return probe(healthURL(os.Getenv("HELPDESK_STRIPE_LISTEN_ADDR")))
}

func healthURL(listenAddr string) string {
	return fmt.Sprintf("http://%s/api/v1/health", normalizeAddr(listenAddr))
}

// probe returns 0 when url answers 200 within probeTimeout.
func probe(url string) int {
	client := &http.Client{Timeout: probeTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 1
	}

	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}

	return 0
}

// normalizeAddr maps an empty or bind-all listen address to loopback, which
// is what the probe reaches from inside the container.
func normalizeAddr(raw string) string {
	if raw == "" {
		return "127.0.0.1:8080"
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return "127.0.0.1:8080"
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
