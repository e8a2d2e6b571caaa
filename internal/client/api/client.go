package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dastyar-dashboard/internal/client/store"
	fundsdomain "dastyar-dashboard/internal/funds/domain"
)

// envelope mirrors the server's uniform response wrapper.
type envelope struct {
	Status         bool            `json:"Status"`
	Data           json.RawMessage `json:"Data"`
	Message        []string        `json:"Message"`
	HttpStatusCode int             `json:"HttpStatusCode"`
	RequestUrl     string          `json:"RequestUrl"`
}

// Client calls the dashboard API. The bearer token is read from the KV store
// on every request, so a login in the same process is picked up immediately.
type Client struct {
	baseURL string
	http    *http.Client
	kv      store.KV
}

// NewClient returns a Client for the API at baseURL. kv may be nil for
// unauthenticated use.
func NewClient(baseURL string, kv store.KV) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		kv:      kv,
	}
}

// SendOtpData is the payload of a successful SendOtpCode call.
type SendOtpData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// LoginData is the payload of a successful LoginByOtp call.
type LoginData struct {
	Token      string `json:"token"`
	FirstLogin bool   `json:"firstLogin"`
}

// PasswordLoginData is the payload of a successful password login.
type PasswordLoginData struct {
	Token string `json:"token"`
}

// SendOtpCode requests a login code for the phone number.
func (c *Client) SendOtpCode(ctx context.Context, phoneNumber string) Result[SendOtpData] {
	return call[SendOtpData](c, ctx, http.MethodPost, "/UserAuth/SendOtpCode",
		map[string]string{"phoneNumber": phoneNumber})
}

// LoginByOtp verifies the code and returns the session token.
func (c *Client) LoginByOtp(ctx context.Context, phoneNumber, code string) Result[LoginData] {
	return call[LoginData](c, ctx, http.MethodPost, "/UserAuth/LoginByOtp",
		map[string]string{"phoneNumber": phoneNumber, "code": code})
}

// LoginByPassword authenticates with phone number and password.
func (c *Client) LoginByPassword(ctx context.Context, phoneNumber, password string) Result[PasswordLoginData] {
	q := url.Values{}
	q.Set("phoneNumber", phoneNumber)
	q.Set("password", password)
	return call[PasswordLoginData](c, ctx, http.MethodGet, "/UserAuth/login?"+q.Encode(), nil)
}

// SendFirebaseToken registers the push-notification token for the logged-in user.
func (c *Client) SendFirebaseToken(ctx context.Context, fcmToken string) Result[string] {
	return call[string](c, ctx, http.MethodPost, "/FirebaseNotification/SendFirebaseToken",
		map[string]string{"fCMToken": fcmToken})
}

// GetAvailableFunds fetches the combined balance report.
func (c *Client) GetAvailableFunds(ctx context.Context) Result[fundsdomain.BalanceReport] {
	return call[fundsdomain.BalanceReport](c, ctx, http.MethodGet, "/AvailableFunds/GetAvailableFunds", nil)
}

// GetBankBalance fetches the bank-only balance report.
func (c *Client) GetBankBalance(ctx context.Context) Result[fundsdomain.BalanceReport] {
	return call[fundsdomain.BalanceReport](c, ctx, http.MethodGet, "/AvailableFunds/GetBankBalance", nil)
}

// GetFundBalance fetches the fund-only balance report.
func (c *Client) GetFundBalance(ctx context.Context) Result[fundsdomain.BalanceReport] {
	return call[fundsdomain.BalanceReport](c, ctx, http.MethodGet, "/AvailableFunds/GetFundBalance", nil)
}

// call performs the request and folds the response into a Result. Any path
// that does not yield a decodable 2xx envelope is a transport error.
func call[T any](c *Client, ctx context.Context, method, path string, body any) Result[T] {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return TransportError[T](err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return TransportError[T](err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.kv != nil {
		if token, err := c.kv.Get(ctx, store.KeyAuthToken); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return TransportError[T](err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return TransportError[T](fmt.Errorf("%s %s: %s", method, path, resp.Status))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return TransportError[T](fmt.Errorf("%s %s: decode envelope: %w", method, path, err))
	}
	if !env.Status {
		return BusinessFailure[T](env.Message)
	}
	var data T
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return TransportError[T](fmt.Errorf("%s %s: decode data: %w", method, path, err))
		}
	}
	return Success(data)
}
