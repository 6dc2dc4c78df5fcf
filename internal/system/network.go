package system

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"iconscrape/internal/errors"
)

// CheckHostReachable resolves the host of rawURL and opens a TCP connection
// to it, using the URL's port or the scheme default.
func CheckHostReachable(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return errors.NewFriendlyError(
			fmt.Sprintf("Invalid URL: %s", rawURL),
			"Check source.search_url in your config",
		)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}

	resolver := &net.Resolver{}
	if _, err := resolver.LookupHost(ctx, host); err != nil {
		return errors.NewFriendlyError(
			fmt.Sprintf("Cannot resolve host: %s", host),
			"Check that the hostname is correct and your DNS is working",
		).WithDetails(err)
	}

	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return errors.NewFriendlyError(
			fmt.Sprintf("Cannot connect to host: %s", host),
			fmt.Sprintf("Host is unreachable:\n"+
				"1. Check internet connection\n"+
				"2. Verify host is not blocked by firewall\n"+
				"3. Try: curl -I %s", rawURL),
		).WithDetails(err)
	}
	_ = conn.Close()
	return nil
}

// DetectProxySettings returns proxy configuration from environment
func DetectProxySettings() map[string]string {
	proxies := make(map[string]string)

	envVars := []string{"HTTP_PROXY", "HTTPS_PROXY", "NO_PROXY", "http_proxy", "https_proxy", "no_proxy"}
	for _, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			proxies[envVar] = val
		}
	}

	dummyReqHTTPS, _ := http.NewRequest("GET", "https://example.com", nil)
	if proxyURL, _ := http.ProxyFromEnvironment(dummyReqHTTPS); proxyURL != nil {
		if _, exists := proxies["HTTPS_PROXY"]; !exists {
			proxies["HTTPS_PROXY"] = proxyURL.String()
		}
	}
	return proxies
}
