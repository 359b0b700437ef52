package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/netx"
)

// ErrUnavailable reports that the server could not be reached at all, as
// opposed to replying with an error.
var ErrUnavailable = errors.New("server unavailable")

// ErrUnauthorized reports a 401 from the server; the caller should log in
// again.
var ErrUnauthorized = errors.New("unauthorized")

// Client is a thin REST client over the backend API. It holds the token pair
// of the logged-in user; a 401 on an authenticated call is retried once after
// a token refresh.
type Client struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// IsLoggedIn reports whether the client holds an access token.
func (c *Client) IsLoggedIn() bool { return c.accessToken != "" }

// Ping probes server reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/register", credentials{Username: username, Password: password}, nil, false)
}

// Login authenticates and stores the token pair for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var pair TokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", credentials{Username: username, Password: password}, &pair, false); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh rotates the stored token pair.
func (c *Client) Refresh(ctx context.Context) error {
	var pair TokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", refreshBody{RefreshToken: c.refreshToken}, &pair, false); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

// Logout revokes the refresh token and forgets both tokens.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", refreshBody{RefreshToken: c.refreshToken}, nil, false)
	c.accessToken = ""
	c.refreshToken = ""
	return err
}

// ListTrips returns all trips with their expenses, newest date first.
func (c *Client) ListTrips(ctx context.Context) ([]Trip, error) {
	var trips []Trip
	if err := c.doJSON(ctx, http.MethodGet, "/api/trips/", nil, &trips, true); err != nil {
		return nil, err
	}
	return trips, nil
}

// GetTrip returns one trip with its expenses.
func (c *Client) GetTrip(ctx context.Context, tripID string) (*Trip, error) {
	var trip Trip
	if err := c.doJSON(ctx, http.MethodGet, "/api/trips/"+tripID, nil, &trip, true); err != nil {
		return nil, err
	}
	return &trip, nil
}

// DeleteTrip removes the trip with all its expenses and photos.
func (c *Client) DeleteTrip(ctx context.Context, tripID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/trips/"+tripID, nil, nil, true)
}

// AddExpenseRequest is the payload of AddExpense.
type AddExpenseRequest struct {
	Location  string  `json:"location"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Comment   string  `json:"comment"`
	PhotoPath string  `json:"photoPath"`
	Timestamp int64   `json:"ts"`
}

// AddExpense records an expense, creating the trip when needed.
func (c *Client) AddExpense(ctx context.Context, req AddExpenseRequest) (*Expense, error) {
	var created Expense
	if err := c.doJSON(ctx, http.MethodPost, "/api/expenses/", req, &created, true); err != nil {
		return nil, err
	}
	return &created, nil
}

// RemoveExpense deletes the expense; the trip goes with its last expense.
func (c *Client) RemoveExpense(ctx context.Context, expenseID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/expenses/"+expenseID, nil, nil, true)
}

type uploadURL struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadPhoto pushes the receipt image to object storage through a presigned
// URL and returns the storage key to attach to an expense.
func (c *Client) UploadPhoto(ctx context.Context, data []byte, contentType string) (string, error) {
	var target uploadURL
	if err := c.doJSON(ctx, http.MethodPost, "/api/photos/upload-url", nil, &target, true); err != nil {
		return "", err
	}
	if err := netx.UploadToPresignedURL(ctx, target.URL, data, contentType); err != nil {
		return "", err
	}
	return target.Key, nil
}

// Download is a named file received from the server.
type Download struct {
	Name string
	Data []byte
}

// ExportTrip downloads the ZIP bundle of one trip.
func (c *Client) ExportTrip(ctx context.Context, tripID string) (*Download, error) {
	return c.download(ctx, http.MethodGet, "/api/trips/"+tripID+"/export", nil)
}

type exportSelection struct {
	TripIDs []string `json:"tripIds"`
}

// ExportSelected downloads the ZIP bundle of the chosen trips.
func (c *Client) ExportSelected(ctx context.Context, tripIDs []string) (*Download, error) {
	return c.download(ctx, http.MethodPost, "/api/export/", exportSelection{TripIDs: tripIDs})
}

// ExportCSV downloads the CSV summary of all trips.
func (c *Client) ExportCSV(ctx context.Context) (*Download, error) {
	return c.download(ctx, http.MethodGet, "/api/export/csv", nil)
}

// GetProfile fetches the user's presentation settings.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile/", nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile replaces the user's presentation settings.
func (c *Client) SaveProfile(ctx context.Context, p *Profile) error {
	return c.doJSON(ctx, http.MethodPut, "/api/profile/", p, nil, true)
}

// --- transport plumbing below ---

func (c *Client) newRequest(ctx context.Context, method, path string, body any, authed bool) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.accessToken)
	}
	return req, nil
}

// do sends the request, transparently refreshing the access token once on a
// 401 when a refresh token is available.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body, authed)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || strings.Contains(err.Error(), "connection refused") {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && authed && c.refreshToken != "" {
		resp.Body.Close()
		if err := c.Refresh(ctx); err != nil {
			return nil, ErrUnauthorized
		}
		req, err = c.newRequest(ctx, method, path, body, authed)
		if err != nil {
			return nil, err
		}
		resp, err = c.http.Do(req)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, authed bool) error {
	resp, err := c.do(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) download(ctx context.Context, method, path string, body any) (*Download, error) {
	resp, err := c.do(ctx, method, path, body, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.apiError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	name := "download"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn := params["filename"]; fn != "" {
			name = fn
		}
	}
	return &Download{Name: name, Data: data}, nil
}

// apiError decodes the server's single JSON error notification.
func (c *Client) apiError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server: %s", body.Error)
	}
	return fmt.Errorf("server: unexpected status %d", resp.StatusCode)
}
