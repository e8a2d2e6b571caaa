package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dastyar-dashboard/internal/client/store"
)

// memKV is a map-backed KV for tests.
type memKV struct {
	m map[string]string
}

func newMemKV() *memKV { return &memKV{m: map[string]string{}} }

func (k *memKV) Get(ctx context.Context, key string) (string, error) { return k.m[key], nil }
func (k *memKV) Set(ctx context.Context, key, value string) error    { k.m[key] = value; return nil }
func (k *memKV) Delete(ctx context.Context, key string) error        { delete(k.m, key); return nil }

func envelopeResponse(status bool, data any, messages ...string) map[string]any {
	if messages == nil {
		messages = []string{}
	}
	return map[string]any{
		"Status":         status,
		"Data":           data,
		"Message":        messages,
		"HttpStatusCode": 200,
		"RequestUrl":     "/test",
	}
}

func TestSendOtpCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/UserAuth/SendOtpCode", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "09123456789", body["phoneNumber"])
		json.NewEncoder(w).Encode(envelopeResponse(true, map[string]string{"message": "sent", "code": "123456"}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	result := c.SendOtpCode(context.Background(), "09123456789")
	require.Equal(t, KindSuccess, result.Kind())
	assert.Equal(t, "sent", result.Data().Message)
	assert.Equal(t, "123456", result.Data().Code)
}

func TestLoginByOtp_BusinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(envelopeResponse(false, nil, "کد وارد شده صحیح نیست"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	result := c.LoginByOtp(context.Background(), "09123456789", "000000")
	require.Equal(t, KindBusinessFailure, result.Kind())
	assert.Equal(t, []string{"کد وارد شده صحیح نیست"}, result.Messages())
}

func TestCall_Non2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	result := c.GetAvailableFunds(context.Background())
	require.Equal(t, KindTransportError, result.Kind())
	require.Error(t, result.Err())
}

func TestCall_NetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	c := NewClient(srv.URL, nil)
	result := c.SendOtpCode(context.Background(), "09123456789")
	require.Equal(t, KindTransportError, result.Kind())
}

func TestCall_MalformedEnvelopeIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	result := c.GetBankBalance(context.Background())
	require.Equal(t, KindTransportError, result.Kind())
}

func TestCall_AttachesBearerTokenFromStore(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(envelopeResponse(true, map[string]any{"totalBalance": 100}))
	}))
	defer srv.Close()

	kv := newMemKV()
	require.NoError(t, kv.Set(context.Background(), store.KeyAuthToken, "T"))
	c := NewClient(srv.URL, kv)

	result := c.GetFundBalance(context.Background())
	require.Equal(t, KindSuccess, result.Kind())
	assert.Equal(t, "Bearer T", gotAuth)
	assert.Equal(t, float64(100), result.Data().TotalBalance)
}

func TestCall_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(envelopeResponse(true, nil))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, newMemKV())
	c.SendOtpCode(context.Background(), "09123456789")
	assert.Equal(t, "", gotAuth)
}

func TestLoginByPassword_QueryString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/UserAuth/login", r.URL.Path)
		assert.Equal(t, "09123456789", r.URL.Query().Get("phoneNumber"))
		assert.Equal(t, "secret", r.URL.Query().Get("password"))
		json.NewEncoder(w).Encode(envelopeResponse(true, map[string]string{"token": "T"}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	result := c.LoginByPassword(context.Background(), "09123456789", "secret")
	require.Equal(t, KindSuccess, result.Kind())
	assert.Equal(t, "T", result.Data().Token)
}

func TestCall_NullDataSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(envelopeResponse(true, nil))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	result := c.SendFirebaseToken(context.Background(), "fcm")
	require.Equal(t, KindSuccess, result.Kind())
	assert.Equal(t, "", result.Data())
}
