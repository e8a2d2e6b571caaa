// Package session drives the client login flow: the phone-number → OTP →
// verified-session state machine, the parallel password path, and the route
// guard over the stored credential.
package session

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"dastyar-dashboard/internal/client/api"
	"dastyar-dashboard/internal/client/store"
)

// State is the OTP flow state.
type State int

const (
	StateAwaitingPhoneNumber State = iota
	StateCodeSent
	StateVerifying
	StateVerified
)

const (
	// CodeDigits is the number of OTP input positions.
	CodeDigits = 6
	// ResendSeconds is the countdown before a resend is allowed.
	ResendSeconds = 120
	// HomePath is the post-login navigation target.
	HomePath = "/home"
)

// msgTransportFailure is the single generic notification for transport
// failures; business failures surface the envelope messages instead.
const msgTransportFailure = "خطا در برقراری ارتباط با سرور؛ لطفا دوباره تلاش کنید"

// ErrInvalidPhoneNumber is returned for a malformed phone number before any
// network call is made.
var ErrInvalidPhoneNumber = errors.New("invalid phone number")

var phonePattern = regexp.MustCompile(`^0\d{10}$`)

// Navigator receives the post-login hand-off.
type Navigator interface {
	Navigate(path string, firstLogin bool)
}

// Notifier shows a transient, non-blocking notification.
type Notifier interface {
	Notify(message string)
}

// Focuser moves input focus to the given digit position.
type Focuser interface {
	Focus(position int)
}

// API is the remote surface the manager depends on.
type API interface {
	SendOtpCode(ctx context.Context, phoneNumber string) api.Result[api.SendOtpData]
	LoginByOtp(ctx context.Context, phoneNumber, code string) api.Result[api.LoginData]
	LoginByPassword(ctx context.Context, phoneNumber, password string) api.Result[api.PasswordLoginData]
	SendFirebaseToken(ctx context.Context, fcmToken string) api.Result[string]
}

// Manager is the login state machine. All dependencies are injected so tests
// substitute fakes; methods are safe for use alongside the countdown goroutine.
type Manager struct {
	api    API
	kv     store.KV
	nav    Navigator
	notify Notifier
	focus  Focuser

	mu               sync.Mutex
	state            State
	phoneNumber      string
	digits           [CodeDigits]string
	remainingSeconds int
	submitted        bool
}

// NewManager returns a Manager in StateAwaitingPhoneNumber.
// focus may be nil when no digit inputs are attached.
func NewManager(apiClient API, kv store.KV, nav Navigator, notify Notifier, focus Focuser) *Manager {
	return &Manager{
		api:    apiClient,
		kv:     kv,
		nav:    nav,
		notify: notify,
		focus:  focus,
		state:  StateAwaitingPhoneNumber,
	}
}

// State returns the current flow state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RemainingSeconds returns the resend countdown value.
func (m *Manager) RemainingSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingSeconds
}

// CanResend reports whether the countdown has run out.
func (m *Manager) CanResend() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateCodeSent && m.remainingSeconds == 0
}

// Digits returns a copy of the current code digits.
func (m *Manager) Digits() [CodeDigits]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.digits
}

// SubmitPhone validates the phone number and requests a login code. A
// malformed number is rejected before any network call. On success the flow
// enters StateCodeSent with a fresh countdown.
func (m *Manager) SubmitPhone(ctx context.Context, phoneNumber string) error {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if !phonePattern.MatchString(phoneNumber) {
		return ErrInvalidPhoneNumber
	}
	result := m.api.SendOtpCode(ctx, phoneNumber)
	switch result.Kind() {
	case api.KindSuccess:
		m.mu.Lock()
		m.phoneNumber = phoneNumber
		m.state = StateCodeSent
		m.remainingSeconds = ResendSeconds
		m.digits = [CodeDigits]string{}
		m.submitted = false
		m.mu.Unlock()
	case api.KindBusinessFailure:
		m.notifyAll(result.Messages())
	case api.KindTransportError:
		m.notify.Notify(msgTransportFailure)
	}
	return nil
}

// Resend requests a new code. Calling it while the countdown is running is a
// silent no-op; on success the countdown restarts at ResendSeconds.
func (m *Manager) Resend(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateCodeSent || m.remainingSeconds != 0 {
		m.mu.Unlock()
		return
	}
	phone := m.phoneNumber
	m.mu.Unlock()

	result := m.api.SendOtpCode(ctx, phone)
	switch result.Kind() {
	case api.KindSuccess:
		m.mu.Lock()
		m.remainingSeconds = ResendSeconds
		m.digits = [CodeDigits]string{}
		m.submitted = false
		m.mu.Unlock()
	case api.KindBusinessFailure:
		m.notifyAll(result.Messages())
	case api.KindTransportError:
		m.notify.Notify(msgTransportFailure)
	}
}

// Tick advances the countdown by one second, clamped at zero.
func (m *Manager) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.remainingSeconds > 0 {
		m.remainingSeconds--
	}
}

// RunCountdown ticks once per second until ctx is cancelled. Callers scope
// ctx to the OTP view's lifetime so the timer always stops on teardown.
func (m *Manager) RunCountdown(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// SetDigit records the value at a digit position, moves focus (non-empty
// advances, cleared retreats, clamped to the input range), and submits the
// code exactly once when all positions become non-empty. Each position holds
// a single character; longer input keeps only the last rune, matching an
// input field that overtypes its previous digit.
func (m *Manager) SetDigit(ctx context.Context, position int, value string) {
	if position < 0 || position >= CodeDigits {
		return
	}
	if runes := []rune(value); len(runes) > 1 {
		value = string(runes[len(runes)-1])
	}
	m.mu.Lock()
	if m.state != StateCodeSent {
		m.mu.Unlock()
		return
	}
	m.digits[position] = value
	if value != "" && position < CodeDigits-1 {
		m.focusOn(position + 1)
	}
	if value == "" && position > 0 {
		m.focusOn(position - 1)
	}
	allFilled := true
	for _, d := range m.digits {
		if d == "" {
			allFilled = false
			break
		}
	}
	if !allFilled {
		// A cleared digit re-arms the auto-submit.
		m.submitted = false
		m.mu.Unlock()
		return
	}
	if m.submitted {
		m.mu.Unlock()
		return
	}
	m.submitted = true
	code := strings.Join(m.digits[:], "")
	m.state = StateVerifying
	m.mu.Unlock()

	m.verify(ctx, code)
}

// verify runs the LoginByOtp call and handles all three outcomes. On failure
// the digits are cleared, focus returns to the first position, and the flow
// stays in StateCodeSent for another attempt.
func (m *Manager) verify(ctx context.Context, code string) {
	m.mu.Lock()
	phone := m.phoneNumber
	m.mu.Unlock()

	result := m.api.LoginByOtp(ctx, phone, code)
	switch result.Kind() {
	case api.KindSuccess:
		if err := m.kv.Set(ctx, store.KeyAuthToken, result.Data().Token); err != nil {
			m.notify.Notify(msgTransportFailure)
			m.resetDigits()
			return
		}
		// Best-effort push-token registration; the login does not wait on it.
		if fcm, err := m.kv.Get(ctx, store.KeyFCMToken); err == nil && fcm != "" {
			_ = m.api.SendFirebaseToken(ctx, fcm)
		}
		m.mu.Lock()
		m.state = StateVerified
		m.mu.Unlock()
		m.nav.Navigate(HomePath, result.Data().FirstLogin)
	case api.KindBusinessFailure:
		// Unlike the send-code path, a failed verify surfaces only the
		// first server message.
		if msgs := result.Messages(); len(msgs) > 0 {
			m.notify.Notify(msgs[0])
		}
		m.resetDigits()
	case api.KindTransportError:
		m.notify.Notify(msgTransportFailure)
		m.resetDigits()
	}
}

// PasswordLogin authenticates with phone and password, stores the credential,
// and navigates home. Business failures surface their messages; transport
// failures show the single generic notification.
func (m *Manager) PasswordLogin(ctx context.Context, phoneNumber, password string) {
	result := m.api.LoginByPassword(ctx, phoneNumber, password)
	switch result.Kind() {
	case api.KindSuccess:
		if err := m.kv.Set(ctx, store.KeyAuthToken, result.Data().Token); err != nil {
			m.notify.Notify(msgTransportFailure)
			return
		}
		m.mu.Lock()
		m.state = StateVerified
		m.mu.Unlock()
		m.nav.Navigate(HomePath, false)
	case api.KindBusinessFailure:
		m.notifyAll(result.Messages())
	case api.KindTransportError:
		m.notify.Notify(msgTransportFailure)
	}
}

// Authenticated reports whether a credential is present. Presence is the sole
// client-side gate for protected routes; no expiry check is made.
func (m *Manager) Authenticated(ctx context.Context) bool {
	token, err := m.kv.Get(ctx, store.KeyAuthToken)
	return err == nil && token != ""
}

func (m *Manager) resetDigits() {
	m.mu.Lock()
	m.digits = [CodeDigits]string{}
	m.submitted = false
	m.state = StateCodeSent
	m.focusOn(0)
	m.mu.Unlock()
}

func (m *Manager) notifyAll(messages []string) {
	for _, msg := range messages {
		m.notify.Notify(msg)
	}
}

// focusOn is called with m.mu held.
func (m *Manager) focusOn(position int) {
	if m.focus != nil {
		m.focus.Focus(position)
	}
}
