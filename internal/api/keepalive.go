package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Keepalive pings the local status endpoint on a fixed interval to
// defeat idle-timeout suspension of the hosting environment. Failures
// are swallowed; this loop must never affect anything else.
func Keepalive(ctx context.Context, port int, interval time.Duration) {
	url := fmt.Sprintf("http://127.0.0.1:%d/status", port)
	client := &http.Client{Timeout: 10 * time.Second}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resp, err := client.Get(url)
			if err != nil {
				continue
			}
			resp.Body.Close()
		}
	}
}
