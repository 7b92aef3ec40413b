package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getpressed/pressed/internal/storage"
)

// fakeSender records sent messages.
type fakeSender struct {
	sent []*Email
	err  error
}

func (f *fakeSender) Send(_ context.Context, e *Email) (*SendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, e)
	return &SendResult{MessageID: "msg_test"}, nil
}

func seedTemplate(t *testing.T, store storage.TemplateStore) {
	t.Helper()
	now := time.Now().UTC()
	err := store.CreateTemplate(context.Background(), &storage.EmailTemplate{
		ID:        "tpl_order",
		Name:      "order-confirmation",
		Subject:   "Order for {{name}}",
		HTMLBody:  "<p>Thanks {{name}}, you paid {{amount|currency}}.</p>",
		Schema:    map[string]any{"name": "string", "amount": "currency"},
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
}

func TestRender(t *testing.T) {
	store := storage.NewMemoryStore()
	seedTemplate(t, store)
	svc := NewService(store, &fakeSender{}, "orders@getpressed.com")

	e, err := svc.Render(context.Background(), "order-confirmation", map[string]any{
		"name":   "Ana",
		"amount": 2500,
	})
	require.NoError(t, err)
	assert.Equal(t, "Order for Ana", e.Subject)
	assert.Equal(t, "<p>Thanks Ana, you paid $25.00.</p>", e.HTMLBody)
	assert.Equal(t, "orders@getpressed.com", e.From)
}

func TestRenderUnknownTemplate(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), &fakeSender{}, "orders@getpressed.com")
	_, err := svc.Render(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSendTemplate(t *testing.T) {
	store := storage.NewMemoryStore()
	seedTemplate(t, store)
	sender := &fakeSender{}
	svc := NewService(store, sender, "orders@getpressed.com")

	result, err := svc.SendTemplate(context.Background(), "order-confirmation", "ana@example.com", map[string]any{
		"name":   "Ana",
		"amount": 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_test", result.MessageID)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, sender.sent[0].To)
}

func TestResendSender(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	sender := NewResendSender("re_testkey", WithEndpoint(srv.URL))
	result, err := sender.Send(context.Background(), &Email{
		From:     "orders@getpressed.com",
		To:       []string{"ana@example.com"},
		Subject:  "hi",
		HTMLBody: "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_123", result.MessageID)
	assert.Equal(t, "Bearer re_testkey", auth)
	assert.Equal(t, "orders@getpressed.com", got.From)
	assert.Equal(t, []string{"ana@example.com"}, got.To)
}

func TestResendSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewResendSender("bad", WithEndpoint(srv.URL))
	_, err := sender.Send(context.Background(), &Email{To: []string{"x@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
