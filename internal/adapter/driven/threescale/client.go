// Package threescale implements the AdminClient port against the 3scale
// Account Management XML API.
package threescale

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/keyprov/internal/domain/model"
	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AdminClient = (*Client)(nil)

// catalogPageSize caps the single-page service listing, matching the admin
// portal's maximum.
const catalogPageSize = 500

// maxErrorBody bounds how much of an error response body is carried in the
// returned error.
const maxErrorBody = 4096

// APIError is a non-2xx response from the admin API, carrying the response
// body when one was available.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("admin api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("admin api returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the 3scale Account Management API. All operations are
// single synchronous requests with the configured timeout; failures are
// returned to the caller and never retried.
type Client struct {
	baseURL     string // always ends with "/"
	accessToken string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a client for the admin API at baseURL, authorized by the
// admin access token. GET responses are served through an in-memory caching
// transport so repeated catalog reads within a run stay cheap.
func NewClient(baseURL, accessToken string, timeout time.Duration, logger *slog.Logger) *Client {
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: httpcache.NewMemoryCacheTransport(),
	}
	return newClient(httpClient, baseURL, accessToken, logger)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, accessToken string, logger *slog.Logger) *Client {
	return newClient(httpClient, baseURL, accessToken, logger)
}

func newClient(httpClient *http.Client, baseURL, accessToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// FindAccount looks up the developer account for a login identifier.
// A 404 response or a response without an id both mean the account does not
// exist yet and map to driven.ErrNotFound.
func (c *Client) FindAccount(ctx context.Context, username string) (model.Account, error) {
	query := url.Values{
		"access_token": {c.accessToken},
		"username":     {username},
	}

	var account accountXML
	err := c.get(ctx, "accounts/find.xml", query, &account)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return model.Account{}, fmt.Errorf("find account %q: %w", username, driven.ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account %q: %w", username, err)
	}
	if account.ID == "" {
		return model.Account{}, fmt.Errorf("find account %q: %w", username, driven.ErrNotFound)
	}

	return model.Account{ID: account.ID, Username: username}, nil
}

// Signup provisions a new developer account via the signup endpoint.
func (c *Client) Signup(ctx context.Context, params driven.SignupParams) (model.Account, error) {
	form := url.Values{
		"access_token": {c.accessToken},
		"username":     {params.Username},
		"email":        {params.Email},
		"org_name":     {params.OrgName},
		"password":     {params.Password},
	}

	var account accountXML
	if err := c.postForm(ctx, "signup.xml", form, &account); err != nil {
		return model.Account{}, fmt.Errorf("signup account %q: %w", params.Username, err)
	}
	if account.ID == "" {
		return model.Account{}, fmt.Errorf("signup account %q: response contained no account id", params.Username)
	}

	return model.Account{ID: account.ID, Username: params.Username}, nil
}

// Services lists the service catalog as a single capped page. Entries
// missing an id or name are dropped.
func (c *Client) Services(ctx context.Context) ([]model.Service, error) {
	query := url.Values{
		"access_token": {c.accessToken},
		"page":         {"1"},
		"per_page":     {fmt.Sprint(catalogPageSize)},
	}

	var list servicesXML
	if err := c.get(ctx, "services.xml", query, &list); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	services := make([]model.Service, 0, len(list.Services))
	for _, s := range list.Services {
		if s.ID == "" || s.Name == "" {
			c.logger.Debug("dropping incomplete service entry", "id", s.ID, "name", s.Name)
			continue
		}
		services = append(services, model.Service{ID: s.ID, Name: s.Name, BackendURL: s.BackendAPIURL})
	}
	return services, nil
}

// Plans lists the application plans for a service. Entries missing an id or
// name are dropped.
func (c *Client) Plans(ctx context.Context, serviceID string) ([]model.Plan, error) {
	query := url.Values{"access_token": {c.accessToken}}

	var list plansXML
	path := fmt.Sprintf("services/%s/application_plans.xml", url.PathEscape(serviceID))
	if err := c.get(ctx, path, query, &list); err != nil {
		return nil, fmt.Errorf("list plans for service %q: %w", serviceID, err)
	}

	plans := make([]model.Plan, 0, len(list.Plans))
	for _, p := range list.Plans {
		if p.ID == "" || p.Name == "" {
			c.logger.Debug("dropping incomplete plan entry", "id", p.ID, "name", p.Name, "service_id", serviceID)
			continue
		}
		plans = append(plans, model.Plan{ID: p.ID, Name: p.Name, ServiceID: serviceID})
	}
	return plans, nil
}

// Applications lists all registered applications for an account. Entries
// missing any of id, name, user_key, service id, or plan id are dropped.
func (c *Client) Applications(ctx context.Context, accountID string) ([]model.Application, error) {
	query := url.Values{"access_token": {c.accessToken}}

	var list applicationsXML
	path := fmt.Sprintf("accounts/%s/applications.xml", url.PathEscape(accountID))
	if err := c.get(ctx, path, query, &list); err != nil {
		return nil, fmt.Errorf("list applications for account %q: %w", accountID, err)
	}

	apps := make([]model.Application, 0, len(list.Applications))
	for _, a := range list.Applications {
		if a.ID == "" || a.Name == "" || a.UserKey == "" || a.ServiceID == "" || a.Plan.ID == "" {
			c.logger.Debug("dropping incomplete application entry", "id", a.ID, "name", a.Name)
			continue
		}
		apps = append(apps, model.Application{
			ID:        a.ID,
			Name:      a.Name,
			Key:       a.UserKey,
			ServiceID: a.ServiceID,
			PlanID:    a.Plan.ID,
		})
	}
	return apps, nil
}

// CreateApplication registers a new application under the given plan. The
// response must carry both an id and a generated key.
func (c *Client) CreateApplication(ctx context.Context, accountID, planID, name string) (model.Application, error) {
	form := url.Values{
		"access_token": {c.accessToken},
		"name":         {name},
		"plan_id":      {planID},
	}

	var app applicationXML
	path := fmt.Sprintf("accounts/%s/applications.xml", url.PathEscape(accountID))
	if err := c.postForm(ctx, path, form, &app); err != nil {
		return model.Application{}, fmt.Errorf("create application %q for account %q: %w", name, accountID, err)
	}
	if app.ID == "" || app.UserKey == "" {
		return model.Application{}, fmt.Errorf("create application %q for account %q: response missing application id or key", name, accountID)
	}

	return model.Application{
		ID:        app.ID,
		Name:      name,
		Key:       app.UserKey,
		ServiceID: app.ServiceID,
		PlanID:    planID,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/xml")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	c.logger.Debug("admin api request", "method", req.Method, "url", req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse xml response from %s: %w", req.URL.Path, err)
	}
	return nil
}
