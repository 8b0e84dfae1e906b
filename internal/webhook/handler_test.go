package webhook_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payment-webhook-service/internal/webhook"

	"github.com/stretchr/testify/assert"
)

func TestServeHTTP_StatusMapping(t *testing.T) {
	validPayload := paymentIntentSucceededBody

	tests := []struct {
		name       string
		payload    string
		header     func(payload []byte) string
		handlerErr error
		wantStatus int
	}{
		{
			name:    "dispatched event answers 200",
			payload: validPayload,
			header: func(p []byte) string {
				return signedHeader(p, testSecret, time.Now())
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "unknown event type answers 200",
			payload: `{"id":"evt_9","api_version":"2020-08-27","type":"invoice.paid","data":{"object":{}}}`,
			header: func(p []byte) string {
				return signedHeader(p, testSecret, time.Now())
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "wrong secret answers 400",
			payload: validPayload,
			header: func(p []byte) string {
				return signedHeader(p, "whsec_wrong", time.Now())
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "missing signature header answers 400",
			payload: validPayload,
			header: func([]byte) string {
				return ""
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "stale timestamp answers 400",
			payload: validPayload,
			header: func(p []byte) string {
				return signedHeader(p, testSecret, time.Now().Add(-time.Hour))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "schema violation answers 400",
			payload: `{"id":"evt_9","api_version":"2020-08-27","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`,
			header: func(p []byte) string {
				return signedHeader(p, testSecret, time.Now())
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "malformed json answers 400",
			payload: `{"id":`,
			header: func(p []byte) string {
				return signedHeader(p, testSecret, time.Now())
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:    "handler failure answers 500 so the provider retries",
			payload: validPayload,
			header: func(p []byte) string {
				return signedHeader(p, testSecret, time.Now())
			},
			handlerErr: errors.New("db unavailable"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := newTestProcessor(&capturingHandler{err: tt.handlerErr})
			handler := webhook.NewHandler(processor, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/payment/stripe/webhook", strings.NewReader(tt.payload))
			req.Header.Set(webhook.SignatureHeader, tt.header([]byte(tt.payload)))
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
