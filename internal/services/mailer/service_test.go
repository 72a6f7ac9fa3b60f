package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
)

// memKV is an in-memory KeyValueStorage for tests.
type memKV struct {
	values map[string]string
}

func newMemKV(values map[string]string) *memKV {
	if values == nil {
		values = make(map[string]string)
	}
	return &memKV{values: values}
}

func (m *memKV) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", interfaces.ErrKeyNotFound
}

func (m *memKV) GetPair(ctx context.Context, key string) (*interfaces.KeyValuePair, error) {
	if v, ok := m.values[key]; ok {
		return &interfaces.KeyValuePair{Key: key, Value: v, UpdatedAt: time.Now()}, nil
	}
	return nil, interfaces.ErrKeyNotFound
}

func (m *memKV) Set(ctx context.Context, key, value, description string) error {
	m.values[key] = value
	return nil
}

func (m *memKV) Delete(ctx context.Context, key string) error {
	if _, ok := m.values[key]; !ok {
		return interfaces.ErrKeyNotFound
	}
	delete(m.values, key)
	return nil
}

func (m *memKV) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	var pairs []interfaces.KeyValuePair
	for k, v := range m.values {
		pairs = append(pairs, interfaces.KeyValuePair{Key: k, Value: v})
	}
	return pairs, nil
}

func (m *memKV) GetAll(ctx context.Context) (map[string]string, error) {
	return m.values, nil
}

func (m *memKV) ListByPrefix(ctx context.Context, prefix string) ([]interfaces.KeyValuePair, error) {
	var pairs []interfaces.KeyValuePair
	for k, v := range m.values {
		if strings.HasPrefix(k, prefix) {
			pairs = append(pairs, interfaces.KeyValuePair{Key: k, Value: v})
		}
	}
	return pairs, nil
}

func TestGetConfigKVOverridesFallback(t *testing.T) {
	kv := newMemKV(map[string]string{
		"smtp_host":     "smtp.kv.example.com",
		"smtp_username": "kv-user@example.com",
	})
	fallback := &common.SMTPConfig{
		Host:     "smtp.file.example.com",
		Port:     2525,
		Username: "file-user@example.com",
		Password: "file-pass",
	}
	service := NewService(kv, fallback, arbor.NewLogger())

	config, err := service.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	if config.Host != "smtp.kv.example.com" {
		t.Errorf("Host = %q, KV should win over config file", config.Host)
	}
	if config.Username != "kv-user@example.com" {
		t.Errorf("Username = %q, KV should win", config.Username)
	}
	// Keys absent from KV fall through to the config file
	if config.Port != 2525 {
		t.Errorf("Port = %d, want file fallback 2525", config.Port)
	}
	if config.Password != "file-pass" {
		t.Errorf("Password = %q, want file fallback", config.Password)
	}
}

func TestGetConfigStripsPasswordSpaces(t *testing.T) {
	// Gmail app passwords are displayed in groups of four
	kv := newMemKV(map[string]string{
		"smtp_password": "abcd efgh ijkl mnop",
	})
	service := NewService(kv, nil, arbor.NewLogger())

	config, err := service.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if config.Password != "abcdefghijklmnop" {
		t.Errorf("Password = %q, want spaces stripped", config.Password)
	}
}

func TestGetConfigFromDefaultsToUsername(t *testing.T) {
	kv := newMemKV(map[string]string{
		"smtp_username": "sender@example.com",
	})
	service := NewService(kv, nil, arbor.NewLogger())

	config, err := service.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if config.From != "sender@example.com" {
		t.Errorf("From = %q, want username fallback", config.From)
	}
}

func TestSetConfigRoundTrip(t *testing.T) {
	kv := newMemKV(nil)
	service := NewService(kv, nil, arbor.NewLogger())

	in := &Config{
		Host:     "smtp.example.com",
		Port:     465,
		Username: "user@example.com",
		Password: "secret",
		From:     "digest@example.com",
		FromName: "Digest",
		UseTLS:   true,
	}
	if err := service.SetConfig(context.Background(), in); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}

	out, err := service.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if *out != *in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		wantErr bool
	}{
		{
			"fully configured",
			map[string]string{"smtp_host": "h", "smtp_username": "u", "smtp_password": "p"},
			false,
		},
		{
			"missing host",
			map[string]string{"smtp_username": "u", "smtp_password": "p"},
			true,
		},
		{
			"missing credentials",
			map[string]string{"smtp_host": "h"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(newMemKV(tt.values), nil, arbor.NewLogger())
			err := service.Verify(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeliveryErrorClassification(t *testing.T) {
	authErr := classify(AuthFailure, "SMTP authentication failed: %w", errors.New("535"))
	if KindOf(authErr) != AuthFailure {
		t.Errorf("KindOf(auth) = %s, want %s", KindOf(authErr), AuthFailure)
	}

	wrapped := fmt.Errorf("send failed: %w", classify(RecipientRejected, "refused"))
	if KindOf(wrapped) != RecipientRejected {
		t.Errorf("KindOf must see through wrapping, got %s", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != TransportError {
		t.Error("unclassified errors default to TransportError")
	}
}

func TestDeliveryErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := classify(NetworkError, "failed to connect: %w", cause)

	if !errors.Is(err, cause) {
		t.Error("DeliveryError should unwrap to its cause")
	}
}

func TestSendHTMLEmailUnconfigured(t *testing.T) {
	service := NewService(newMemKV(nil), nil, arbor.NewLogger())

	err := service.SendHTMLEmail(context.Background(), "to@example.com", "subject", "<p>hi</p>", "hi")
	if err == nil {
		t.Fatal("send with no configuration should fail")
	}
	// No host configured: classified before any network activity
	if kind := KindOf(err); kind != TransportError {
		t.Errorf("KindOf = %s, want %s", kind, TransportError)
	}
}

func TestSendHTMLEmailMissingCredentials(t *testing.T) {
	kv := newMemKV(map[string]string{"smtp_host": "smtp.example.com"})
	service := NewService(kv, nil, arbor.NewLogger())

	err := service.SendHTMLEmail(context.Background(), "to@example.com", "subject", "<p>hi</p>", "hi")
	if KindOf(err) != AuthFailure {
		t.Errorf("KindOf = %s, want %s", KindOf(err), AuthFailure)
	}
}

func TestEncodeBase64LineLength(t *testing.T) {
	long := strings.Repeat("stock digest content ", 100)
	encoded := encodeBase64WithLineBreaks(long)

	for i, line := range strings.Split(encoded, "\r\n") {
		if len(line) > 76 {
			t.Errorf("line %d is %d chars, max 76", i, len(line))
		}
	}
}

func TestGenerateBoundaryUnique(t *testing.T) {
	a, b := generateBoundary(), generateBoundary()
	if a == b {
		t.Error("boundaries should be unique per message")
	}
	if !strings.HasPrefix(a, "stockbrief_") {
		t.Errorf("unexpected boundary format: %q", a)
	}
}
