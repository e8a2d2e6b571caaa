package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter assembles the API: auth and funds routes behind the auth/policy
// middleware, plus /metrics and /healthz. The returned handler is wrapped
// with otelhttp so requests produce spans from the global tracer provider.
func NewRouter(auth *AuthHandler, funds *FundsHandler, authMW *AuthMiddleware, metrics *Metrics) http.Handler {
	r := mux.NewRouter()

	route := func(path, method string, h http.HandlerFunc) {
		var handler http.Handler = h
		if metrics != nil {
			handler = metrics.Middleware(path, handler)
		}
		r.Handle(path, handler).Methods(method)
	}

	route("/UserAuth/SendOtpCode", http.MethodPost, auth.SendOtpCode)
	route("/UserAuth/LoginByOtp", http.MethodPost, auth.LoginByOtp)
	route("/UserAuth/login", http.MethodGet, auth.LoginByPassword)
	route("/FirebaseNotification/SendFirebaseToken", http.MethodPost, auth.SendFirebaseToken)
	route("/AvailableFunds/GetAvailableFunds", http.MethodGet, funds.GetAvailableFunds)
	route("/AvailableFunds/GetBankBalance", http.MethodGet, funds.GetBankBalance)
	route("/AvailableFunds/GetFundBalance", http.MethodGet, funds.GetFundBalance)

	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	var handler http.Handler = r
	if authMW != nil {
		handler = authMW.Wrap(handler)
	}
	return otelhttp.NewHandler(handler, "dastyar-api")
}
