package bansos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// The remote is a Laravel app: every form POST must carry a CSRF token
// scraped from the landing page. Tokens live about an hour; 3500s leaves a
// margin before the server-side expiry.
const tokenLifetime = 3500 * time.Second

func (c *Client) ensureSession(ctx context.Context) error {

	c.mu.Lock()
	valid := c.token != "" && time.Since(c.tokenRefreshedAt) < tokenLifetime
	c.mu.Unlock()

	if valid {
		return nil
	}
	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) error {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrRemoteUnavailable, "fetch csrf token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrRemoteUnavailable, "fetch csrf token: status %v", resp.StatusCode)
	}

	token, err := extractCSRFToken(resp.Body)
	if err != nil {
		return errors.Wrapf(ErrMalformedResponse, "fetch csrf token: %v", err)
	}

	c.mu.Lock()
	c.token = token
	c.tokenRefreshedAt = time.Now()
	c.mu.Unlock()

	log.Debug("csrf token refreshed")
	return nil
}

func extractCSRFToken(r io.Reader) (string, error) {

	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var token string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" && attrValue(n, "name") == "csrf-token" {
			token = attrValue(n, "content")
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if token == "" {
		return "", fmt.Errorf("csrf-token meta tag not found")
	}
	return token, nil
}
