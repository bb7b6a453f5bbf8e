package callback

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoticeFromQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantOK      bool
		wantKind    Kind
		wantMessage string
	}{
		{
			name:        "success with event name",
			query:       "success=payment_completed&event=Gala",
			wantOK:      true,
			wantKind:    KIND_SUCCESS,
			wantMessage: `Payment completed successfully! You are now registered for "Gala".`,
		},
		{
			name:        "success without event name",
			query:       "success=payment_completed",
			wantOK:      true,
			wantKind:    KIND_SUCCESS,
			wantMessage: "Payment completed successfully! You are now registered for the event.",
		},
		{
			name:        "payment_failed",
			query:       "error=payment_failed",
			wantOK:      true,
			wantKind:    KIND_ERROR,
			wantMessage: "Payment was not completed. Please try again.",
		},
		{
			name:        "payment_error",
			query:       "error=payment_error",
			wantOK:      true,
			wantKind:    KIND_ERROR,
			wantMessage: "An error occurred during payment processing. Please contact support if payment was deducted.",
		},
		{
			name:        "invalid_callback",
			query:       "error=invalid_callback",
			wantOK:      true,
			wantKind:    KIND_ERROR,
			wantMessage: "Invalid payment callback. Please contact support.",
		},
		{
			name:        "payment_not_found",
			query:       "error=payment_not_found",
			wantOK:      true,
			wantKind:    KIND_ERROR,
			wantMessage: "Payment record not found. Please contact support if payment was deducted.",
		},
		{
			name:        "payment_update_failed",
			query:       "error=payment_update_failed",
			wantOK:      true,
			wantKind:    KIND_ERROR,
			wantMessage: "Payment was successful but could not update registration. Please contact support.",
		},
		{
			name:        "payment_verification_failed",
			query:       "error=payment_verification_failed",
			wantOK:      true,
			wantKind:    KIND_ERROR,
			wantMessage: "Payment verification failed. Please contact support if payment was deducted.",
		},
		{
			name:        "unrecognized code shows the raw code",
			query:       "error=foo_bar",
			wantOK:      true,
			wantKind:    KIND_ERROR,
			wantMessage: "foo_bar",
		},
		{
			name:        "explicit message wins over mapped copy",
			query:       "error=payment_failed&message=Card+declined",
			wantOK:      true,
			wantKind:    KIND_ERROR,
			wantMessage: "Card declined",
		},
		{
			name:        "explicit message on success",
			query:       "success=payment_completed&message=All+done",
			wantOK:      true,
			wantKind:    KIND_SUCCESS,
			wantMessage: "All done",
		},
		{
			name:   "no payment outcome",
			query:  "page=2&search=workshop",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			notice, ok := NoticeFromQuery(query)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, notice.Kind)
				assert.Equal(t, tt.wantMessage, notice.Message)
			}
		})
	}
}

func TestConsume(t *testing.T) {
	t.Run("strips payment parameters and keeps the rest", func(t *testing.T) {
		query, err := url.ParseQuery("success=payment_completed&event=Gala&page=2&search=workshop")
		assert.NoError(t, err)

		notice, remaining, ok := Consume(query)
		assert.True(t, ok)
		assert.Contains(t, notice.Message, "Gala")

		assert.Empty(t, remaining.Get("success"))
		assert.Empty(t, remaining.Get("event"))
		assert.Equal(t, "2", remaining.Get("page"))
		assert.Equal(t, "workshop", remaining.Get("search"))
	})

	t.Run("consumed query produces no second notice", func(t *testing.T) {
		query, err := url.ParseQuery("error=payment_failed&message=Card+declined")
		assert.NoError(t, err)

		_, remaining, ok := Consume(query)
		assert.True(t, ok)

		_, ok = NoticeFromQuery(remaining)
		assert.False(t, ok)
	})
}

func TestRedirectURLs(t *testing.T) {
	t.Run("success URL round trips through the reducer", func(t *testing.T) {
		target := SuccessURL("https://portal.example.com/events", "Annual Gala")
		parsed, err := url.Parse(target)
		assert.NoError(t, err)

		notice, ok := NoticeFromQuery(parsed.Query())
		assert.True(t, ok)
		assert.Equal(t, KIND_SUCCESS, notice.Kind)
		assert.Contains(t, notice.Message, "Annual Gala")
	})

	t.Run("error URL round trips through the reducer", func(t *testing.T) {
		target := ErrorURL("https://portal.example.com/events", ErrorNotFound, "")
		parsed, err := url.Parse(target)
		assert.NoError(t, err)

		notice, ok := NoticeFromQuery(parsed.Query())
		assert.True(t, ok)
		assert.Equal(t, KIND_ERROR, notice.Kind)
		assert.Equal(t, "Payment record not found. Please contact support if payment was deducted.", notice.Message)
	})
}
