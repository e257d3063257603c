// Command preflight checks that the settings file is valid and the portal
// is reachable, exit code only. Intended as a scheduler smoke check before
// the real sync run.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mapops/volcsync/internal/config"
)

func main() {
	os.Exit(check())
}

func check() int {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "preflight: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !portalReachable(ctx, cfg.PortalURL) {
		fmt.Fprintf(os.Stderr, "preflight: portal %s not reachable\n", cfg.PortalURL)
		return 1
	}

	return 0
}

// portalReachable probes the portal's unauthenticated info endpoint and
// expects a decodable JSON document back.
func portalReachable(ctx context.Context, portalURL string) bool {
	endpoint := strings.TrimRight(portalURL, "/") + "/sharing/rest/info?f=json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var info map[string]any
	return json.NewDecoder(resp.Body).Decode(&info) == nil
}
