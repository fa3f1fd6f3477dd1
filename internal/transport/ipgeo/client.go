// Package ipgeo looks up an approximate position for a client IP address
// over an ip-api.com compatible JSON endpoint.
package ipgeo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/geo"
)

// DefaultBaseURL is the public ip-api endpoint.
const DefaultBaseURL = "http://ip-api.com/json"

// responseFields limits the payload to what the lookup needs.
const responseFields = "status,message,lat,lon,city,regionName,country"

// Config holds the lookup client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RatePerMinute caps outgoing lookups. 0 disables limiting.
	RatePerMinute int
	Logger        *zap.Logger
}

// Client is an IP geolocation client.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates an IP geolocation client.
func NewClient(cfg *Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  cfg.Logger,
	}
}

// lookupResponse is the ip-api JSON body.
type lookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Region  string  `json:"regionName"`
	Country string  `json:"country"`
}

// Lookup resolves ip to a position. Private and loopback addresses cannot be
// located and yield domain.ErrGeolocationUnsupported.
func (c *Client) Lookup(ctx context.Context, ip string) (geo.Point, error) {
	addr := net.ParseIP(ip)
	if addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return geo.Point{}, fmt.Errorf("address %q: %w", ip, domain.ErrGeolocationUnsupported)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return geo.Point{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	endpoint := fmt.Sprintf("%s/%s?fields=%s", c.baseURL, url.PathEscape(addr.String()), responseFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return geo.Point{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return geo.Point{}, fmt.Errorf("ip lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return geo.Point{}, fmt.Errorf("ip lookup: unexpected status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geo.Point{}, fmt.Errorf("decode ip lookup: %w", err)
	}
	if body.Status != "success" {
		return geo.Point{}, fmt.Errorf("ip lookup %s: %s: %w", ip, body.Message, domain.ErrGeolocationUnsupported)
	}

	c.logger.Debug("IP located",
		zap.String("city", body.City),
		zap.String("region", body.Region),
		zap.String("country", body.Country),
	)
	return geo.Point{Latitude: body.Lat, Longitude: body.Lon}, nil
}

// ForAddr binds the client to one address so it can serve as a position provider.
func (c *Client) ForAddr(ip string) *AddrProvider {
	return &AddrProvider{client: c, ip: ip}
}

// AddrProvider locates a fixed client address.
type AddrProvider struct {
	client *Client
	ip     string
}

// Name implements geolocate.Provider.
func (p *AddrProvider) Name() string { return "ipapi" }

// CurrentPosition implements geolocate.Provider.
func (p *AddrProvider) CurrentPosition(ctx context.Context) (geo.Point, error) {
	return p.client.Lookup(ctx, p.ip)
}

// ClientIP extracts the caller address from a request's RemoteAddr.
// chi's RealIP middleware has already applied X-Forwarded-For when configured.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
