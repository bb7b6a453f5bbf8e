package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/Rhymond/go-money"
	"github.com/google/uuid"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/registration"
	"github.com/gulf-dental-association/member-portal/users"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var _ DB = &mockDB{}

type mockDB struct {
	GetEventFunc       func(ctx context.Context, id uuid.UUID) (events.Event, error)
	GetEventBySlugFunc func(ctx context.Context, slug string) (events.Event, error)
	ListEventsFunc     func(ctx context.Context, params events.ListParams) (events.ListEventsResponse, error)
	CreateEventFunc    func(ctx context.Context, event events.Event) error
	UpdateEventFunc    func(ctx context.Context, event events.Event) error

	GetUserFunc        func(ctx context.Context, id uuid.UUID) (users.User, error)
	GetUserByEmailFunc func(ctx context.Context, email string) (users.User, error)
	CreateUserFunc     func(ctx context.Context, user users.User) error

	CreateEventMemberFunc       func(ctx context.Context, member registration.EventMember, event events.Event) error
	GetEventMemberFunc          func(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (registration.EventMember, error)
	GetEventMemberByTokenFunc   func(ctx context.Context, token string) (registration.EventMember, error)
	ListEventMembersForUserFunc func(ctx context.Context, userID uuid.UUID) ([]registration.EventMember, error)
	SetInvoiceFunc              func(ctx context.Context, memberID uuid.UUID, invoiceID string) error
	MarkPaidFunc                func(ctx context.Context, memberID uuid.UUID, pricePaid *money.Money, invoiceID string) error
	MarkCheckedInFunc           func(ctx context.Context, memberID uuid.UUID, at time.Time) error
}

func (m *mockDB) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	if m.GetEventFunc != nil {
		return m.GetEventFunc(ctx, id)
	}
	return events.Event{}, events.NewEventDoesNotExistsError("not found", nil)
}

func (m *mockDB) GetEventBySlug(ctx context.Context, slug string) (events.Event, error) {
	if m.GetEventBySlugFunc != nil {
		return m.GetEventBySlugFunc(ctx, slug)
	}
	return events.Event{}, events.NewEventDoesNotExistsError("not found", nil)
}

func (m *mockDB) ListEvents(ctx context.Context, params events.ListParams) (events.ListEventsResponse, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, params)
	}
	return events.ListEventsResponse{}, nil
}

func (m *mockDB) CreateEvent(ctx context.Context, event events.Event) error {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, event)
	}
	return nil
}

func (m *mockDB) UpdateEvent(ctx context.Context, event events.Event) error {
	if m.UpdateEventFunc != nil {
		return m.UpdateEventFunc(ctx, event)
	}
	return nil
}

func (m *mockDB) GetUser(ctx context.Context, id uuid.UUID) (users.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return users.User{}, users.NewUserDoesNotExistError("not found", nil)
}

func (m *mockDB) GetUserByEmail(ctx context.Context, email string) (users.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return users.User{}, users.NewUserDoesNotExistError("not found", nil)
}

func (m *mockDB) CreateUser(ctx context.Context, user users.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	return nil
}

func (m *mockDB) CreateEventMember(ctx context.Context, member registration.EventMember, event events.Event) error {
	if m.CreateEventMemberFunc != nil {
		return m.CreateEventMemberFunc(ctx, member, event)
	}
	return nil
}

func (m *mockDB) GetEventMember(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (registration.EventMember, error) {
	if m.GetEventMemberFunc != nil {
		return m.GetEventMemberFunc(ctx, eventID, userID)
	}
	return registration.EventMember{}, registration.NewMemberDoesNotExistError("not found", nil)
}

func (m *mockDB) GetEventMemberByToken(ctx context.Context, token string) (registration.EventMember, error) {
	if m.GetEventMemberByTokenFunc != nil {
		return m.GetEventMemberByTokenFunc(ctx, token)
	}
	return registration.EventMember{}, registration.NewMemberDoesNotExistError("not found", nil)
}

func (m *mockDB) ListEventMembersForUser(ctx context.Context, userID uuid.UUID) ([]registration.EventMember, error) {
	if m.ListEventMembersForUserFunc != nil {
		return m.ListEventMembersForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockDB) SetInvoice(ctx context.Context, memberID uuid.UUID, invoiceID string) error {
	if m.SetInvoiceFunc != nil {
		return m.SetInvoiceFunc(ctx, memberID, invoiceID)
	}
	return nil
}

func (m *mockDB) MarkPaid(ctx context.Context, memberID uuid.UUID, pricePaid *money.Money, invoiceID string) error {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, memberID, pricePaid, invoiceID)
	}
	return nil
}

func (m *mockDB) MarkCheckedIn(ctx context.Context, memberID uuid.UUID, at time.Time) error {
	if m.MarkCheckedInFunc != nil {
		return m.MarkCheckedInFunc(ctx, memberID, at)
	}
	return nil
}

var _ registration.PaymentGateway = &mockGateway{}

type mockGateway struct {
	InitiatePaymentFunc func(ctx context.Context, amount *money.Money) ([]registration.PaymentMethod, error)
	ExecutePaymentFunc  func(ctx context.Context, params registration.ExecutePaymentParams) (registration.PaymentInfo, error)
	PaymentStatusFunc   func(ctx context.Context, invoiceID string) (registration.InvoiceStatus, error)
}

func (m *mockGateway) InitiatePayment(ctx context.Context, amount *money.Money) ([]registration.PaymentMethod, error) {
	if m.InitiatePaymentFunc != nil {
		return m.InitiatePaymentFunc(ctx, amount)
	}
	return []registration.PaymentMethod{{ID: 1, Name: "Benefit", Currency: "BHD"}}, nil
}

func (m *mockGateway) ExecutePayment(ctx context.Context, params registration.ExecutePaymentParams) (registration.PaymentInfo, error) {
	if m.ExecutePaymentFunc != nil {
		return m.ExecutePaymentFunc(ctx, params)
	}
	return registration.PaymentInfo{PaymentURL: "https://pay.example.com/inv/1", InvoiceID: "1"}, nil
}

func (m *mockGateway) PaymentStatus(ctx context.Context, invoiceID string) (registration.InvoiceStatus, error) {
	if m.PaymentStatusFunc != nil {
		return m.PaymentStatusFunc(ctx, invoiceID)
	}
	return registration.INVOICE_PAID, nil
}

type mockEmailSender struct {
	SendEmailFunc func(ctx context.Context, e email.Email) error
	sent          []email.Email
}

func (m *mockEmailSender) SendEmail(ctx context.Context, e email.Email) error {
	m.sent = append(m.sent, e)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, e)
	}
	return nil
}

func newTestAPI(db DB, gateway registration.PaymentGateway, emailSender email.Sender) *API {
	if gateway == nil {
		gateway = &mockGateway{}
	}
	if emailSender == nil {
		emailSender = &mockEmailSender{}
	}
	return NewAPI(Params{
		DB:          db,
		Logger:      noopLogger(),
		Env:         LOCAL,
		Gateway:     gateway,
		EmailSender: emailSender,
		JWTSecret:   []byte("test-secret"),
		BaseURL:     "https://api.portal.test",
		FrontendURL: "https://portal.test",
		FromAddress: "events@portal.test",
	})
}
