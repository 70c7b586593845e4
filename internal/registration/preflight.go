package registration

import (
	"context"
	"fmt"
	"net/http"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// preflightTimeout bounds the whole handshake, independent of the
// caller's context.
const preflightTimeout = 10 * time.Second

// VerifyEndpoint dials url as a streamable-HTTP MCP endpoint and lists
// its tools. It satisfies PreflightFunc; the manager treats a failure
// as a warning, not a registration blocker.
func VerifyEndpoint(ctx context.Context, url string, headers map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, preflightTimeout)
	defer cancel()

	httpClient := &http.Client{
		Transport: &headerRoundTripper{base: http.DefaultTransport, headers: headers},
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "memview",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &mcpsdk.StreamableClientTransport{
		Endpoint:   url,
		HTTPClient: httpClient,
	}, nil)
	if err != nil {
		return fmt.Errorf("endpoint does not speak MCP: %w", err)
	}
	defer session.Close()

	if _, err := session.ListTools(ctx, nil); err != nil {
		return fmt.Errorf("endpoint rejected tools/list: %w", err)
	}
	return nil
}

// headerRoundTripper adds fixed headers (bearer auth) to every request.
type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}
