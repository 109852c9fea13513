package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/2beens/onthego/internal/activity"
	"github.com/2beens/onthego/internal/telemetry/metrics"
	"github.com/2beens/onthego/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://connectapi.garmin.com"

	tokenPath      = "/oauth-service/oauth/token"
	revokePath     = "/oauth-service/oauth/revoke"
	activitiesPath = "/activitylist-service/activities/search/activities"
	detailsPath    = "/activity-service/activity/%d/details"

	clientID = "onthego"
)

type ClientParams struct {
	BaseURL  string
	Username string
	Password string
	// HTTPClient is used for every call, including the token exchange.
	HTTPClient *http.Client
	// Cache holds raw details payloads, shared between clients. Optional.
	Cache       *freecache.Cache
	CacheExpire time.Duration
	Metrics     *metrics.Manager
}

// Client is a thin garmin connect REST client bound to one account.
type Client struct {
	baseURL     string
	username    string
	password    string
	httpClient  *http.Client
	cache       *freecache.Cache
	cacheExpire int
	metrics     *metrics.Manager

	mu     sync.RWMutex
	token  *oauth2.Token
	authed *http.Client
}

func NewClient(params ClientParams) *Client {
	baseURL := strings.TrimSuffix(params.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	metricsManager := params.Metrics
	if metricsManager == nil {
		metricsManager = metrics.NewStandaloneManager("garmin_client")
	}

	return &Client{
		baseURL:     baseURL,
		username:    params.Username,
		password:    params.Password,
		httpClient:  httpClient,
		cache:       params.Cache,
		cacheExpire: int(params.CacheExpire.Seconds()),
		metrics:     metricsManager,
	}
}

func (c *Client) Username() string {
	return c.username
}

func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authed != nil
}

// Login exchanges the account credentials for an access token.
func (c *Client) Login(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "garmin.login")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	defer c.observe("login", time.Now(), &err)

	if c.username == "" || c.password == "" {
		return fmt.Errorf("%w: missing username or password", ErrConnection)
	}

	conf := &oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := conf.PasswordCredentialsToken(tokenCtx, c.username, c.password)
	if err != nil {
		return loginError(err)
	}

	c.mu.Lock()
	c.token = token
	c.authed = &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   c.httpClient.Transport,
		},
	}
	c.mu.Unlock()

	log.Debugf("garmin: user %s logged in", c.username)
	return nil
}

// ListActivities returns up to limit most recent activities, skipping the first start.
func (c *Client) ListActivities(ctx context.Context, start, limit int) (activities []activity.Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "garmin.listActivities")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	defer c.observe("list_activities", time.Now(), &err)

	query := url.Values{}
	query.Set("start", fmt.Sprintf("%d", start))
	query.Set("limit", fmt.Sprintf("%d", limit))

	respBytes, err := c.get(ctx, activitiesPath+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(respBytes, &activities); err != nil {
		return nil, fmt.Errorf("unmarshal activities: %w", err)
	}

	return activities, nil
}

// ActivityDetails returns the per-sample metrics of an activity.
func (c *Client) ActivityDetails(ctx context.Context, activityID int64) (details *activity.Details, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "garmin.activityDetails")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	defer c.observe("activity_details", time.Now(), &err)

	details = &activity.Details{}

	cacheKey := []byte(fmt.Sprintf("details::%s::%d", c.username, activityID))
	if c.cache != nil {
		if cached, cacheErr := c.cache.Get(cacheKey); cacheErr == nil {
			if err := json.Unmarshal(cached, details); err == nil {
				log.Tracef("garmin: details for activity %d found in cache", activityID)
				return details, nil
			} else {
				log.Errorf("garmin: unmarshal cached details for activity %d: %s", activityID, err)
			}
		}
	}

	respBytes, err := c.get(ctx, fmt.Sprintf(detailsPath, activityID))
	if err != nil {
		return nil, err
	}

	details = &activity.Details{}
	if err := json.Unmarshal(respBytes, details); err != nil {
		return nil, fmt.Errorf("unmarshal activity %d details: %w", activityID, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, respBytes, c.cacheExpire); err != nil {
			log.Errorf("garmin: cache details for activity %d: %s", activityID, err)
		}
	}

	return details, nil
}

// Logout revokes the access token. The client is logged out locally even
// when the revoke call fails.
func (c *Client) Logout(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "garmin.logout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	defer c.observe("logout", time.Now(), &err)

	c.mu.Lock()
	token, authed := c.token, c.authed
	c.token, c.authed = nil, nil
	c.mu.Unlock()

	if authed == nil {
		return ErrNotLoggedIn
	}

	form := url.Values{}
	form.Set("token", token.AccessToken)
	form.Set("client_id", clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+revokePath, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := authed.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	return errFromStatus(resp)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	c.mu.RLock()
	authed := c.authed
	c.mu.RUnlock()
	if authed == nil {
		return nil, ErrNotLoggedIn
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := authed.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	if err := errFromStatus(resp); err != nil {
		return nil, err
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response bytes: %w", err)
	}

	return respBytes, nil
}

func (c *Client) observe(operation string, start time.Time, err *error) {
	c.metrics.HistogramGarminDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	c.metrics.CounterGarminCalls.WithLabelValues(operation, Outcome(*err)).Inc()
}
