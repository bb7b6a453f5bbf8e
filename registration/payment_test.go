package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gulf-dental-association/member-portal/events"
	"github.com/gulf-dental-association/member-portal/users"
)

var _ PaymentGateway = &mockGateway{}

type mockGateway struct {
	InitiatePaymentFunc func(ctx context.Context, amount *money.Money) ([]PaymentMethod, error)
	ExecutePaymentFunc  func(ctx context.Context, params ExecutePaymentParams) (PaymentInfo, error)
	PaymentStatusFunc   func(ctx context.Context, invoiceID string) (InvoiceStatus, error)
}

func (m *mockGateway) InitiatePayment(ctx context.Context, amount *money.Money) ([]PaymentMethod, error) {
	if m.InitiatePaymentFunc != nil {
		return m.InitiatePaymentFunc(ctx, amount)
	}
	return []PaymentMethod{{ID: 1, Name: "Benefit", Currency: "BHD"}}, nil
}

func (m *mockGateway) ExecutePayment(ctx context.Context, params ExecutePaymentParams) (PaymentInfo, error) {
	if m.ExecutePaymentFunc != nil {
		return m.ExecutePaymentFunc(ctx, params)
	}
	return PaymentInfo{PaymentURL: "https://pay.example.com/inv/123", InvoiceID: "123"}, nil
}

func (m *mockGateway) PaymentStatus(ctx context.Context, invoiceID string) (InvoiceStatus, error) {
	if m.PaymentStatusFunc != nil {
		return m.PaymentStatusFunc(ctx, invoiceID)
	}
	return INVOICE_PAID, nil
}

func upcomingPaidEvent(id uuid.UUID, now time.Time) events.Event {
	return events.Event{
		ID:           id,
		Version:      1,
		Title:        "Implantology Workshop",
		StartTime:    now.Add(48 * time.Hour),
		EndTime:      now.Add(52 * time.Hour),
		IsPaid:       true,
		RegularPrice: money.New(10000, "BHD"),
		MemberPrice:  money.New(7000, "BHD"),
	}
}

func TestListPaymentMethods(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := users.User{ID: uuid.New(), MembershipType: users.MEMBERSHIP_PAID}

	t.Run("returns methods and member price", func(t *testing.T) {
		eventID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}
		gateway := &mockGateway{
			InitiatePaymentFunc: func(ctx context.Context, amount *money.Money) ([]PaymentMethod, error) {
				assert.True(t, amount.Amount() == 7000)
				return []PaymentMethod{{ID: 1, Name: "Benefit"}, {ID: 2, Name: "Visa/Mastercard"}}, nil
			},
		}

		methods, price, evt, err := ListPaymentMethods(context.Background(), eventID, user, now, eventRepo, &mockMemberRepository{}, gateway)
		assert.NoError(t, err)
		assert.Len(t, methods, 2)
		assert.Equal(t, int64(7000), price.Amount())
		assert.Equal(t, event.Title, evt.Title)
	})

	t.Run("free event has nothing to pay", func(t *testing.T) {
		eventID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		event.IsPaid = false
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}

		_, _, _, err := ListPaymentMethods(context.Background(), eventID, user, now, eventRepo, &mockMemberRepository{}, &mockGateway{})
		assertReason(t, err, REASON_EVENT_NOT_PAID)
	})

	t.Run("paid event with no price configured", func(t *testing.T) {
		eventID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		event.RegularPrice = nil
		event.MemberPrice = nil
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}

		_, _, _, err := ListPaymentMethods(context.Background(), eventID, user, now, eventRepo, &mockMemberRepository{}, &mockGateway{})
		assertReason(t, err, REASON_PRICE_NOT_SET)
	})

	t.Run("already paid", func(t *testing.T) {
		eventID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, userID uuid.UUID) (EventMember, error) {
				return EventMember{PaymentStatus: PAYMENT_PAID}, nil
			},
		}

		_, _, _, err := ListPaymentMethods(context.Background(), eventID, user, now, eventRepo, memberRepo, &mockGateway{})
		assertReason(t, err, REASON_ALREADY_PAID)
	})

	t.Run("gateway failure", func(t *testing.T) {
		eventID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}
		gateway := &mockGateway{
			InitiatePaymentFunc: func(ctx context.Context, amount *money.Money) ([]PaymentMethod, error) {
				return nil, errors.New("gateway 500")
			},
		}

		_, _, _, err := ListPaymentMethods(context.Background(), eventID, user, now, eventRepo, &mockMemberRepository{}, gateway)
		assertReason(t, err, REASON_GATEWAY_FAILURE)
	})
}

func TestStartPayment(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := users.User{
		ID:             uuid.New(),
		Email:          "member@example.com",
		FullName:       "Dr. Huda",
		Mobile:         "+97312345678",
		MembershipType: users.MEMBERSHIP_FREE,
	}

	t.Run("creates pending registration and returns payment URL", func(t *testing.T) {
		eventID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}
		created := false
		memberRepo := &mockMemberRepository{
			CreateEventMemberFunc: func(ctx context.Context, member EventMember, evt events.Event) error {
				created = true
				assert.Equal(t, PAYMENT_PENDING, member.PaymentStatus)
				assert.NotNil(t, member.InvoiceID)
				assert.Equal(t, "inv-42", *member.InvoiceID)
				assert.Equal(t, event.Version+1, evt.Version)
				return nil
			},
		}
		gateway := &mockGateway{
			ExecutePaymentFunc: func(ctx context.Context, params ExecutePaymentParams) (PaymentInfo, error) {
				assert.Equal(t, int64(2), params.MethodID)
				assert.Equal(t, int64(10000), params.Amount.Amount())
				assert.Equal(t, "Dr. Huda", params.CustomerName)
				assert.Equal(t, event.Title, params.ItemName)
				assert.Equal(t, "https://portal.example.com/cb", params.CallbackURL)
				return PaymentInfo{PaymentURL: "https://pay.example.com/inv/42", InvoiceID: "inv-42"}, nil
			},
		}

		info, err := StartPayment(context.Background(), StartPaymentParams{
			EventID:     eventID,
			User:        user,
			MethodID:    2,
			CallbackURL: "https://portal.example.com/cb",
			ErrorURL:    "https://portal.example.com/err",
			Now:         now,
		}, eventRepo, memberRepo, gateway)

		assert.NoError(t, err)
		assert.Equal(t, "https://pay.example.com/inv/42", info.PaymentURL)
		assert.Equal(t, "inv-42", info.InvoiceID)
		assert.True(t, created)
	})

	t.Run("no payment method selected", func(t *testing.T) {
		_, err := StartPayment(context.Background(), StartPaymentParams{
			EventID: uuid.New(),
			User:    user,
			Now:     now,
		}, &mockEventRepository{}, &mockMemberRepository{}, &mockGateway{})
		assertReason(t, err, REASON_NO_PAYMENT_METHOD)
	})

	t.Run("gateway returns no payment URL", func(t *testing.T) {
		eventID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}
		gateway := &mockGateway{
			ExecutePaymentFunc: func(ctx context.Context, params ExecutePaymentParams) (PaymentInfo, error) {
				return PaymentInfo{InvoiceID: "inv-42"}, nil
			},
		}

		_, err := StartPayment(context.Background(), StartPaymentParams{
			EventID:  eventID,
			User:     user,
			MethodID: 1,
			Now:      now,
		}, eventRepo, &mockMemberRepository{}, gateway)
		assertReason(t, err, REASON_GATEWAY_FAILURE)
	})

	t.Run("retry updates invoice on the pending registration", func(t *testing.T) {
		eventID := uuid.New()
		memberID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}
		invoiceSet := false
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, userID uuid.UUID) (EventMember, error) {
				return EventMember{ID: memberID, PaymentStatus: PAYMENT_PENDING}, nil
			},
			SetInvoiceFunc: func(ctx context.Context, mID uuid.UUID, invoiceID string) error {
				invoiceSet = true
				assert.Equal(t, memberID, mID)
				assert.Equal(t, "123", invoiceID)
				return nil
			},
			CreateEventMemberFunc: func(ctx context.Context, member EventMember, evt events.Event) error {
				t.Fatal("should not create a second registration")
				return nil
			},
		}

		info, err := StartPayment(context.Background(), StartPaymentParams{
			EventID:  eventID,
			User:     user,
			MethodID: 1,
			Now:      now,
		}, eventRepo, memberRepo, &mockGateway{})

		assert.NoError(t, err)
		assert.NotEmpty(t, info.PaymentURL)
		assert.True(t, invoiceSet)
	})

	t.Run("full event rejects new payment", func(t *testing.T) {
		eventID := uuid.New()
		event := upcomingPaidEvent(eventID, now)
		capacity := 10
		event.Capacity = &capacity
		event.RegisteredCount = 10
		eventRepo := &mockEventRepository{
			GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
				return event, nil
			},
		}

		_, err := StartPayment(context.Background(), StartPaymentParams{
			EventID:  eventID,
			User:     user,
			MethodID: 1,
			Now:      now,
		}, eventRepo, &mockMemberRepository{}, &mockGateway{})
		assertReason(t, err, REASON_EVENT_FULL)
	})
}

func TestConfirmPayment(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eventID := uuid.New()
	userID := uuid.New()

	pendingMember := func() EventMember {
		invoice := "inv-42"
		return EventMember{
			ID:            uuid.New(),
			EventID:       eventID,
			UserID:        userID,
			Token:         "EVT-AB12CD34",
			PaymentStatus: PAYMENT_PENDING,
			InvoiceID:     &invoice,
			JoinedAt:      now,
		}
	}

	eventRepo := &mockEventRepository{
		GetEventFunc: func(ctx context.Context, id uuid.UUID) (events.Event, error) {
			return upcomingPaidEvent(eventID, now), nil
		},
	}
	userRepo := &mockUserRepository{
		GetUserFunc: func(ctx context.Context, id uuid.UUID) (users.User, error) {
			return users.User{ID: id, MembershipType: users.MEMBERSHIP_FREE}, nil
		},
	}

	t.Run("pending to paid", func(t *testing.T) {
		member := pendingMember()
		marked := false
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, uID uuid.UUID) (EventMember, error) {
				return member, nil
			},
			MarkPaidFunc: func(ctx context.Context, memberID uuid.UUID, pricePaid *money.Money, invoiceID string) error {
				marked = true
				assert.Equal(t, member.ID, memberID)
				assert.Equal(t, int64(10000), pricePaid.Amount())
				assert.Equal(t, "inv-42", invoiceID)
				return nil
			},
		}

		confirmed, event, err := ConfirmPayment(context.Background(), eventID, userID, "inv-42", eventRepo, memberRepo, userRepo, &mockGateway{})
		assert.NoError(t, err)
		assert.True(t, marked)
		assert.Equal(t, PAYMENT_PAID, confirmed.PaymentStatus)
		assert.Equal(t, int64(10000), confirmed.PricePaid.Amount())
		assert.Equal(t, "Implantology Workshop", event.Title)
	})

	t.Run("already paid is idempotent", func(t *testing.T) {
		member := pendingMember()
		member.PaymentStatus = PAYMENT_PAID
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, uID uuid.UUID) (EventMember, error) {
				return member, nil
			},
			MarkPaidFunc: func(ctx context.Context, memberID uuid.UUID, pricePaid *money.Money, invoiceID string) error {
				t.Fatal("should not write again")
				return nil
			},
		}
		gateway := &mockGateway{
			PaymentStatusFunc: func(ctx context.Context, invoiceID string) (InvoiceStatus, error) {
				t.Fatal("should not hit the gateway again")
				return INVOICE_PAID, nil
			},
		}

		confirmed, _, err := ConfirmPayment(context.Background(), eventID, userID, "inv-42", eventRepo, memberRepo, userRepo, gateway)
		assert.NoError(t, err)
		assert.Equal(t, PAYMENT_PAID, confirmed.PaymentStatus)
	})

	t.Run("no registration", func(t *testing.T) {
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, uID uuid.UUID) (EventMember, error) {
				return EventMember{}, NewMemberDoesNotExistError("not found", nil)
			},
		}

		_, _, err := ConfirmPayment(context.Background(), eventID, userID, "inv-42", eventRepo, memberRepo, userRepo, &mockGateway{})
		assertReason(t, err, REASON_PAYMENT_NOT_FOUND)
	})

	t.Run("gateway says not paid", func(t *testing.T) {
		member := pendingMember()
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, uID uuid.UUID) (EventMember, error) {
				return member, nil
			},
		}
		gateway := &mockGateway{
			PaymentStatusFunc: func(ctx context.Context, invoiceID string) (InvoiceStatus, error) {
				return INVOICE_PENDING, nil
			},
		}

		_, _, err := ConfirmPayment(context.Background(), eventID, userID, "inv-42", eventRepo, memberRepo, userRepo, gateway)
		assertReason(t, err, REASON_PAYMENT_NOT_CONFIRMED)
	})

	t.Run("gateway verification error", func(t *testing.T) {
		member := pendingMember()
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, uID uuid.UUID) (EventMember, error) {
				return member, nil
			},
		}
		gateway := &mockGateway{
			PaymentStatusFunc: func(ctx context.Context, invoiceID string) (InvoiceStatus, error) {
				return "", errors.New("gateway timeout")
			},
		}

		_, _, err := ConfirmPayment(context.Background(), eventID, userID, "inv-42", eventRepo, memberRepo, userRepo, gateway)
		assertReason(t, err, REASON_PAYMENT_VERIFICATION_FAILED)
	})

	t.Run("falls back to stored invoice when none given", func(t *testing.T) {
		member := pendingMember()
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, uID uuid.UUID) (EventMember, error) {
				return member, nil
			},
		}
		gateway := &mockGateway{
			PaymentStatusFunc: func(ctx context.Context, invoiceID string) (InvoiceStatus, error) {
				assert.Equal(t, "inv-42", invoiceID)
				return INVOICE_PAID, nil
			},
		}

		confirmed, _, err := ConfirmPayment(context.Background(), eventID, userID, "", eventRepo, memberRepo, userRepo, gateway)
		assert.NoError(t, err)
		assert.Equal(t, PAYMENT_PAID, confirmed.PaymentStatus)
	})

	t.Run("mark paid failure", func(t *testing.T) {
		member := pendingMember()
		memberRepo := &mockMemberRepository{
			GetEventMemberFunc: func(ctx context.Context, evID uuid.UUID, uID uuid.UUID) (EventMember, error) {
				return member, nil
			},
			MarkPaidFunc: func(ctx context.Context, memberID uuid.UUID, pricePaid *money.Money, invoiceID string) error {
				return errors.New("db down")
			},
		}

		_, _, err := ConfirmPayment(context.Background(), eventID, userID, "inv-42", eventRepo, memberRepo, userRepo, &mockGateway{})
		assertReason(t, err, REASON_PAYMENT_UPDATE_FAILED)
	})
}
