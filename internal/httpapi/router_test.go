package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	authservice "dastyar-dashboard/internal/auth/service"
	"dastyar-dashboard/internal/devotp"
	fundsdomain "dastyar-dashboard/internal/funds/domain"
	fundsservice "dastyar-dashboard/internal/funds/service"
	otpdomain "dastyar-dashboard/internal/otp/domain"
	"dastyar-dashboard/internal/policy/engine"
	"dastyar-dashboard/internal/security"
	userdomain "dastyar-dashboard/internal/user/domain"
)

const testPhone = "09123456789"

// In-memory fakes for the repositories behind the handlers.

type memUserRepo struct {
	byID    map[string]*userdomain.User
	byPhone map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*userdomain.User{}, byPhone: map[string]*userdomain.User{}}
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return m.byID[id], nil
}

func (m *memUserRepo) GetByPhone(ctx context.Context, phone string) (*userdomain.User, error) {
	return m.byPhone[phone], nil
}

func (m *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	m.byPhone[u.PhoneNumber] = &cp
	return nil
}

func (m *memUserRepo) SetFCMToken(ctx context.Context, userID, token string) error {
	if u, ok := m.byID[userID]; ok {
		u.FCMToken = token
	}
	return nil
}

type memChallengeRepo struct {
	byPhone map[string]*otpdomain.Challenge
}

func newMemChallengeRepo() *memChallengeRepo {
	return &memChallengeRepo{byPhone: map[string]*otpdomain.Challenge{}}
}

func (m *memChallengeRepo) Upsert(ctx context.Context, c *otpdomain.Challenge) error {
	cp := *c
	m.byPhone[c.PhoneNumber] = &cp
	return nil
}

func (m *memChallengeRepo) GetByPhone(ctx context.Context, phone string) (*otpdomain.Challenge, error) {
	return m.byPhone[phone], nil
}

func (m *memChallengeRepo) DeleteByPhone(ctx context.Context, phone string) error {
	delete(m.byPhone, phone)
	return nil
}

type memAccountRepo struct {
	accounts []fundsdomain.Account
}

func (m *memAccountRepo) ListAll(ctx context.Context) ([]fundsdomain.Account, error) {
	return m.accounts, nil
}

func (m *memAccountRepo) ListByKind(ctx context.Context, kind string) ([]fundsdomain.Account, error) {
	var out []fundsdomain.Account
	for _, a := range m.accounts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAccountRepo) Create(ctx context.Context, a *fundsdomain.Account) error {
	a.Serial = int64(len(m.accounts) + 1)
	m.accounts = append(m.accounts, *a)
	return nil
}

type nopSender struct{}

func (nopSender) SendCode(phoneNumber, code string) error { return nil }

type apiFixture struct {
	server *httptest.Server
	users  *memUserRepo
}

// newAPIFixture wires the full handler stack with in-memory repositories and
// dev OTP mode, so tests can read the dispatched code from the response.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	users := newMemUserRepo()
	svc := authservice.NewAuthService(
		users, newMemChallengeRepo(), nopSender{}, devotp.NewMemoryStore(),
		security.NewHasher(bcrypt.MinCost), tokens, nil, true,
	)
	accounts := &memAccountRepo{accounts: []fundsdomain.Account{
		{Serial: 1, AccountingName: "بانک ملت", Kind: fundsdomain.KindBank, Balance: 600000},
		{Serial: 2, AccountingName: "صندوق درآمد ثابت", Kind: fundsdomain.KindFund, Balance: 400000},
	}}
	funds := fundsservice.NewService(accounts, 5000)

	policy, err := engine.NewOPAEvaluator()
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	metrics := NewMetrics()
	router := NewRouter(
		NewAuthHandler(svc, metrics),
		NewFundsHandler(funds),
		NewAuthMiddleware(tokens, policy),
		metrics,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &apiFixture{server: srv, users: users}
}

type envelopeOf[T any] struct {
	Status         bool
	Data           T
	Message        []string
	HttpStatusCode int
	RequestUrl     string
}

func doJSON[T any](t *testing.T, method, url, body, token string) (int, envelopeOf[T]) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var env envelopeOf[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env
}

func TestSendOtpCode_Envelope(t *testing.T) {
	f := newAPIFixture(t)
	code, env := doJSON[struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}](t, http.MethodPost, f.server.URL+"/UserAuth/SendOtpCode", `{"phoneNumber":"`+testPhone+`"}`, "")

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !env.Status {
		t.Fatalf("envelope Status = false, messages %v", env.Message)
	}
	if env.HttpStatusCode != http.StatusOK {
		t.Errorf("HttpStatusCode = %d, want 200", env.HttpStatusCode)
	}
	if env.RequestUrl != "/UserAuth/SendOtpCode" {
		t.Errorf("RequestUrl = %q", env.RequestUrl)
	}
	if env.Data.Message == "" {
		t.Error("Data.message should be set")
	}
	if len(env.Data.Code) != 6 {
		t.Errorf("dev code = %q, want 6 digits", env.Data.Code)
	}
}

func TestSendOtpCode_InvalidPhoneBusinessFailure(t *testing.T) {
	f := newAPIFixture(t)
	code, env := doJSON[any](t, http.MethodPost, f.server.URL+"/UserAuth/SendOtpCode", `{"phoneNumber":"12345"}`, "")
	// Business failure: HTTP 200 with Status false and a user-facing message.
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if env.Status {
		t.Fatal("envelope Status should be false")
	}
	if len(env.Message) != 1 {
		t.Fatalf("Message = %v, want one entry", env.Message)
	}
}

func TestSendOtpCode_MalformedBody(t *testing.T) {
	f := newAPIFixture(t)
	code, env := doJSON[any](t, http.MethodPost, f.server.URL+"/UserAuth/SendOtpCode", `{not json`, "")
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if env.Status {
		t.Error("envelope Status should be false")
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	f := newAPIFixture(t)
	paths := []string{
		"/AvailableFunds/GetAvailableFunds",
		"/AvailableFunds/GetBankBalance",
		"/AvailableFunds/GetFundBalance",
	}
	for _, path := range paths {
		code, env := doJSON[any](t, http.MethodGet, f.server.URL+path, "", "")
		if code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, code)
		}
		if env.Status {
			t.Errorf("GET %s envelope Status should be false", path)
		}
	}

	code, _ := doJSON[any](t, http.MethodPost, f.server.URL+"/FirebaseNotification/SendFirebaseToken", `{"fCMToken":"x"}`, "")
	if code != http.StatusUnauthorized {
		t.Errorf("SendFirebaseToken status = %d, want 401", code)
	}
}

func TestProtectedRoutes_RejectGarbageToken(t *testing.T) {
	f := newAPIFixture(t)
	code, _ := doJSON[any](t, http.MethodGet, f.server.URL+"/AvailableFunds/GetAvailableFunds", "", "not-a-jwt")
	if code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
}

// TestLoginFlow_EndToEnd drives the whole OTP path: dispatch a code for
// 09123456789, log in with it, then call the protected endpoints with the
// issued token.
func TestLoginFlow_EndToEnd(t *testing.T) {
	f := newAPIFixture(t)

	_, sendEnv := doJSON[struct {
		Code string `json:"code"`
	}](t, http.MethodPost, f.server.URL+"/UserAuth/SendOtpCode", `{"phoneNumber":"`+testPhone+`"}`, "")
	if !sendEnv.Status {
		t.Fatalf("send otp failed: %v", sendEnv.Message)
	}

	status, loginEnv := doJSON[struct {
		Token      string `json:"token"`
		FirstLogin bool   `json:"firstLogin"`
	}](t, http.MethodPost, f.server.URL+"/UserAuth/LoginByOtp",
		`{"phoneNumber":"`+testPhone+`","code":"`+sendEnv.Data.Code+`"}`, "")
	if status != http.StatusOK || !loginEnv.Status {
		t.Fatalf("login failed: status=%d messages=%v", status, loginEnv.Message)
	}
	if loginEnv.Data.Token == "" {
		t.Fatal("token should be issued")
	}
	if !loginEnv.Data.FirstLogin {
		t.Error("firstLogin should be true for a new phone")
	}
	token := loginEnv.Data.Token

	status, fundsEnv := doJSON[fundsdomain.BalanceReport](t, http.MethodGet, f.server.URL+"/AvailableFunds/GetAvailableFunds", "", token)
	if status != http.StatusOK || !fundsEnv.Status {
		t.Fatalf("funds call failed: status=%d messages=%v", status, fundsEnv.Message)
	}
	if fundsEnv.Data.TotalBalance != 1000000 {
		t.Errorf("TotalBalance = %v, want 1000000", fundsEnv.Data.TotalBalance)
	}
	if len(fundsEnv.Data.Accounts) != 2 {
		t.Errorf("accounts = %d, want 2", len(fundsEnv.Data.Accounts))
	}

	status, bankEnv := doJSON[fundsdomain.BalanceReport](t, http.MethodGet, f.server.URL+"/AvailableFunds/GetBankBalance", "", token)
	if status != http.StatusOK || bankEnv.Data.TotalBalance != 600000 {
		t.Errorf("bank report: status=%d total=%v", status, bankEnv.Data.TotalBalance)
	}

	status, pushEnv := doJSON[string](t, http.MethodPost, f.server.URL+"/FirebaseNotification/SendFirebaseToken", `{"fCMToken":"fcm-1"}`, token)
	if status != http.StatusOK || !pushEnv.Status {
		t.Fatalf("push token call failed: status=%d messages=%v", status, pushEnv.Message)
	}
	var user *userdomain.User
	for _, u := range f.users.byID {
		user = u
	}
	if user == nil || user.FCMToken != "fcm-1" {
		t.Errorf("stored FCM token = %+v, want fcm-1", user)
	}
}

func TestLoginByOtp_WrongCodeBusinessFailure(t *testing.T) {
	f := newAPIFixture(t)
	if _, env := doJSON[any](t, http.MethodPost, f.server.URL+"/UserAuth/SendOtpCode", `{"phoneNumber":"`+testPhone+`"}`, ""); !env.Status {
		t.Fatalf("send otp failed: %v", env.Message)
	}
	status, env := doJSON[any](t, http.MethodPost, f.server.URL+"/UserAuth/LoginByOtp",
		`{"phoneNumber":"`+testPhone+`","code":"000000"}`, "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if env.Status {
		t.Fatal("envelope Status should be false for a wrong code")
	}
	if len(env.Message) == 0 {
		t.Error("Message should carry the failure")
	}
}

func TestLoginByPassword(t *testing.T) {
	f := newAPIFixture(t)
	hasher := security.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash([]byte("secret123"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	now := time.Now().UTC()
	if err := f.users.Create(context.Background(), &userdomain.User{
		ID: "user-1", PhoneNumber: testPhone, PasswordHash: hash, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	status, env := doJSON[struct {
		Token string `json:"token"`
	}](t, http.MethodGet, f.server.URL+"/UserAuth/login?phoneNumber="+testPhone+"&password=secret123", "", "")
	if status != http.StatusOK || !env.Status {
		t.Fatalf("password login failed: status=%d messages=%v", status, env.Message)
	}
	if env.Data.Token == "" {
		t.Error("token should be issued")
	}

	status, env = doJSON[struct {
		Token string `json:"token"`
	}](t, http.MethodGet, f.server.URL+"/UserAuth/login?phoneNumber="+testPhone+"&password=wrong", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if env.Status {
		t.Error("envelope Status should be false for wrong password")
	}
}

func TestMetricsAndHealthEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	// Generate one request so counters exist.
	doJSON[any](t, http.MethodPost, f.server.URL+"/UserAuth/SendOtpCode", `{"phoneNumber":"12"}`, "")

	resp, err := http.Get(f.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", resp.StatusCode)
	}

	resp2, err := http.Get(f.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", resp2.StatusCode)
	}
}
