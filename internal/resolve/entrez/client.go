// internal/resolve/entrez/client.go
package entrez

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cagecleaner/internal/hits"
	"cagecleaner/internal/resolve"
)

// DefaultBaseURL is the public NCBI E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Config holds the E-utilities connection settings. NCBI allows 3 requests
// per second without an API key and 10 with one; MinInterval defaults
// accordingly when zero.
type Config struct {
	BaseURL     string
	APIKey      string
	Email       string
	Tool        string
	Timeout     time.Duration
	MinInterval time.Duration
}

// Client resolves scaffold accessions through the same chain the edirect
// one-liner walks: nucleotide docsum → BioSample accession → biosample UID →
// linked assembly UID → assembly docsum → AssemblyAccession.
type Client struct {
	cfg  Config
	http *http.Client

	mu   sync.Mutex
	last time.Time
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Tool == "" {
		cfg.Tool = "cagecleaner"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MinInterval <= 0 {
		if cfg.APIKey != "" {
			cfg.MinInterval = 100 * time.Millisecond
		} else {
			cfg.MinInterval = 334 * time.Millisecond
		}
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// ResolveScaffold implements resolve.Resolver.
func (c *Client) ResolveScaffold(ctx context.Context, scaffold hits.ScaffoldID) (resolve.AssemblyID, error) {
	biosample, err := c.elementText(ctx, "esummary.fcgi", url.Values{
		"db": {"nucleotide"}, "id": {string(scaffold)}, "version": {"2.0"},
	}, "BioSample")
	if err != nil {
		return "", fmt.Errorf("nucleotide docsum for %s: %w", scaffold, err)
	}
	if biosample == "" {
		return "", fmt.Errorf("%w: %s has no BioSample", resolve.ErrNotFound, scaffold)
	}

	biosampleUID, err := c.elementText(ctx, "esearch.fcgi", url.Values{
		"db": {"biosample"}, "term": {biosample + "[Accession]"},
	}, "Id")
	if err != nil {
		return "", fmt.Errorf("biosample search for %s: %w", biosample, err)
	}
	if biosampleUID == "" {
		return "", fmt.Errorf("%w: biosample %s not indexed", resolve.ErrNotFound, biosample)
	}

	assemblyUID, err := c.elementText(ctx, "elink.fcgi", url.Values{
		"dbfrom": {"biosample"}, "db": {"assembly"}, "id": {biosampleUID},
	}, "Id", biosampleUID)
	if err != nil {
		return "", fmt.Errorf("assembly link for %s: %w", biosample, err)
	}
	if assemblyUID == "" {
		return "", fmt.Errorf("%w: biosample %s has no assembly", resolve.ErrNotFound, biosample)
	}

	accession, err := c.elementText(ctx, "esummary.fcgi", url.Values{
		"db": {"assembly"}, "id": {assemblyUID}, "version": {"2.0"},
	}, "AssemblyAccession")
	if err != nil {
		return "", fmt.Errorf("assembly docsum for uid %s: %w", assemblyUID, err)
	}
	if accession == "" {
		return "", fmt.Errorf("%w: assembly uid %s has no accession", resolve.ErrNotFound, assemblyUID)
	}
	return resolve.AssemblyID(accession), nil
}

// elementText issues one E-utilities call and returns the text of the first
// <name> element whose content is not one of skip. The skip list filters the
// echoed source UID out of elink responses.
func (c *Client) elementText(ctx context.Context, endpoint string, params url.Values, name string, skip ...string) (string, error) {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	dec := xml.NewDecoder(body)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("decode %s response: %w", endpoint, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}
		var text string
		if err := dec.DecodeElement(&text, &start); err != nil {
			return "", fmt.Errorf("decode <%s>: %w", name, err)
		}
		text = strings.TrimSpace(text)
		if !contains(skip, text) {
			return text, nil
		}
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (io.ReadCloser, error) {
	c.throttle()

	params.Set("tool", c.cfg.Tool)
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}
		_ = resp.Body.Close()
		lastErr = fmt.Errorf("%s: HTTP %d", endpoint, resp.StatusCode)
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			break
		}
	}
	return nil, lastErr
}

// throttle spaces requests MinInterval apart across all goroutines sharing
// the client.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wait := c.cfg.MinInterval - time.Since(c.last); wait > 0 {
		time.Sleep(wait)
	}
	c.last = time.Now()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
