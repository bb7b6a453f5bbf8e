package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/registration"
	"github.com/gulf-dental-association/member-portal/users"
)

type Environment string

const (
	LOCAL Environment = "LOCAL"
	PROD  Environment = "PROD"
)

type DB interface {
	events.Repository
	users.Repository
	registration.Repository
}

type API struct {
	db          DB
	logger      *slog.Logger
	env         Environment
	gateway     registration.PaymentGateway
	emailSender email.Sender
	jwtSecret   []byte
	baseURL     string
	frontendURL string
	fromAddress string
}

type Params struct {
	DB          DB
	Logger      *slog.Logger
	Env         Environment
	Gateway     registration.PaymentGateway
	EmailSender email.Sender
	JWTSecret   []byte
	BaseURL     string
	FrontendURL string
	FromAddress string
}

func NewAPI(params Params) *API {
	return &API{
		db:          params.DB,
		logger:      params.Logger,
		env:         params.Env,
		gateway:     params.Gateway,
		emailSender: params.EmailSender,
		jwtSecret:   params.JWTSecret,
		baseURL:     params.BaseURL,
		frontendURL: params.FrontendURL,
		fromAddress: params.FromAddress,
	}
}

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Get("/api/event/public", a.listPublicEvents)
	r.Get("/api/event/{slug}", a.getEventBySlug)
	r.Post("/api/event/join", a.joinEvent)
	r.Post("/api/event/check-in", a.checkIn)
	r.Post("/api/check-in/validate", a.validateTicket)

	r.Post("/api/payments/event/create-invoice", a.createInvoice)
	r.Post("/api/payments/event/execute-payment", a.executePayment)
	r.Get("/api/payments/event/callback", a.paymentCallback)

	r.Get("/api/auth/me", a.me)
	r.Post("/api/auth/login", a.login)
	r.Post("/api/auth/logout", a.logout)

	r.Post("/api/admin/events", a.createEvent)

	return useMiddlewares(r,
		a.sessionMiddleware(),
		a.corsMiddleware(),
		a.loggingMiddleware(),
		middleware.RequestID,
	)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("Failed to encode response body", "error", err)
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, errorResponse{Success: false, Message: message})
}
