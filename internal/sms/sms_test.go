package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioSender_Send(t *testing.T) {
	var gotTo, gotBody, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTo = r.PostForm.Get("To")
		gotBody = r.PostForm.Get("Body")
		gotUser, _, _ = r.BasicAuth()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewTwilioSender("AC123", "secret", "+15550000000")
	s.endpoint = srv.URL

	err := s.Send(context.Background(), "+254700000001", "code 123456")
	require.NoError(t, err)
	assert.Equal(t, "+254700000001", gotTo)
	assert.Equal(t, "code 123456", gotBody)
	assert.Equal(t, "AC123", gotUser)
}

func TestTwilioSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid To number"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewTwilioSender("AC123", "secret", "+15550000000")
	s.endpoint = srv.URL

	err := s.Send(context.Background(), "nope", "hi")
	assert.ErrorContains(t, err, "400")
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), "+1", "hello"))
}
