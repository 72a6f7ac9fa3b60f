package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

// fakeSubscriberStorage keeps subscribers in a slice, mimicking the
// Badger-backed implementation's behavior.
type fakeSubscriberStorage struct {
	subscribers []*models.Subscriber
	nextID      int
}

func (s *fakeSubscriberStorage) Get(ctx context.Context, id string) (*models.Subscriber, error) {
	for _, sub := range s.subscribers {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, interfaces.ErrSubscriberNotFound
}

func (s *fakeSubscriberStorage) GetByName(ctx context.Context, name string) (*models.Subscriber, error) {
	for _, sub := range s.subscribers {
		if sub.Name == name {
			return sub, nil
		}
	}
	return nil, interfaces.ErrSubscriberNotFound
}

func (s *fakeSubscriberStorage) List(ctx context.Context) ([]*models.Subscriber, error) {
	return s.subscribers, nil
}

func (s *fakeSubscriberStorage) ListActive(ctx context.Context) ([]*models.Subscriber, error) {
	var active []*models.Subscriber
	for _, sub := range s.subscribers {
		if sub.Active {
			active = append(active, sub)
		}
	}
	return active, nil
}

func (s *fakeSubscriberStorage) Save(ctx context.Context, sub *models.Subscriber) error {
	if sub.ID == "" {
		s.nextID++
		sub.ID = "sub_" + strings.Repeat("0", s.nextID)
	}
	for i, existing := range s.subscribers {
		if existing.ID == sub.ID {
			s.subscribers[i] = sub
			return nil
		}
	}
	s.subscribers = append(s.subscribers, sub)
	return nil
}

func (s *fakeSubscriberStorage) SetActive(ctx context.Context, id string, active bool) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sub.Active = active
	return nil
}

func (s *fakeSubscriberStorage) Delete(ctx context.Context, id string) error {
	for i, sub := range s.subscribers {
		if sub.ID == id {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return nil
		}
	}
	return interfaces.ErrSubscriberNotFound
}

// fakeSubmitter records send-now dispatches.
type fakeSubmitter struct {
	submitted []string
}

func (f *fakeSubmitter) SubmitSendNow(subscriberID string) error {
	f.submitted = append(f.submitted, subscriberID)
	return nil
}

func newTestSubscriberHandler(storage *fakeSubscriberStorage, submitter *fakeSubmitter, onChange func()) *SubscriberHandler {
	return NewSubscriberHandler(storage, submitter, onChange, arbor.NewLogger())
}

func TestRegisterHandlerCreatesSubscriber(t *testing.T) {
	storage := &fakeSubscriberStorage{}
	reloads := 0
	handler := newTestSubscriberHandler(storage, &fakeSubmitter{}, func() { reloads++ })

	body := `{"name":"alice","email":"alice@example.com","assets":[" Tesla ","","Nvidia"],"industries":["Defense"],"send_hour":7,"send_minute":30}`
	req := httptest.NewRequest("POST", "/api/subscribers", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.RegisterHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, storage.subscribers, 1)

	sub := storage.subscribers[0]
	assert.Equal(t, "alice", sub.Name)
	assert.Equal(t, []string{"Tesla", "Nvidia"}, sub.Assets, "names should be trimmed and empties dropped")
	assert.Equal(t, []string{"Defense"}, sub.Industries)
	assert.Equal(t, 7, sub.SendHour)
	assert.Equal(t, 30, sub.SendMinute)
	assert.True(t, sub.Active, "new subscribers default to active")
	assert.Equal(t, 1, reloads, "registration should trigger a schedule reload")
}

func TestRegisterHandlerUpsertsByNameKeepingID(t *testing.T) {
	storage := &fakeSubscriberStorage{subscribers: []*models.Subscriber{
		{ID: "sub_keep", Name: "alice", Email: "old@example.com", Assets: []string{"Tesla"}, Active: true, SendHour: 9},
	}}
	handler := newTestSubscriberHandler(storage, &fakeSubmitter{}, nil)

	body := `{"name":"alice","email":"new@example.com","assets":["Palantir"]}`
	req := httptest.NewRequest("POST", "/api/subscribers", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.RegisterHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, storage.subscribers, 1)

	sub := storage.subscribers[0]
	assert.Equal(t, "sub_keep", sub.ID, "re-registration keeps the existing ID")
	assert.Equal(t, "new@example.com", sub.Email)
	assert.Equal(t, []string{"Palantir"}, sub.Assets, "watchlist is replaced, not merged")
	assert.Equal(t, 9, sub.SendHour, "omitted slot fields keep their old values")
}

func TestRegisterHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@example.com"}`},
		{"missing email", `{"name":"alice"}`},
		{"blank name", `{"name":"  ","email":"a@example.com"}`},
		{"invalid json", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestSubscriberHandler(&fakeSubscriberStorage{}, &fakeSubmitter{}, nil)
			req := httptest.NewRequest("POST", "/api/subscribers", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.RegisterHandler(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetByNameHandler(t *testing.T) {
	storage := &fakeSubscriberStorage{subscribers: []*models.Subscriber{
		{ID: "sub_a", Name: "alice", Email: "alice@example.com"},
	}}
	handler := newTestSubscriberHandler(storage, &fakeSubmitter{}, nil)

	req := httptest.NewRequest("GET", "/api/subscribers/by-name/alice", nil)
	rec := httptest.NewRecorder()
	handler.GetByNameHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")

	req = httptest.NewRequest("GET", "/api/subscribers/by-name/nobody", nil)
	rec = httptest.NewRecorder()
	handler.GetByNameHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleHandler(t *testing.T) {
	storage := &fakeSubscriberStorage{subscribers: []*models.Subscriber{
		{ID: "sub_a", Name: "alice", Email: "alice@example.com", Active: true},
	}}
	reloads := 0
	handler := newTestSubscriberHandler(storage, &fakeSubmitter{}, func() { reloads++ })

	req := httptest.NewRequest("POST", "/api/subscribers/sub_a/toggle", nil)
	rec := httptest.NewRecorder()
	handler.ToggleHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, storage.subscribers[0].Active)
	assert.Equal(t, 1, reloads, "toggle should trigger a schedule reload")
	assert.Contains(t, rec.Body.String(), `"active":false`)
}

func TestDeleteHandler(t *testing.T) {
	storage := &fakeSubscriberStorage{subscribers: []*models.Subscriber{
		{ID: "sub_a", Name: "alice", Email: "alice@example.com"},
	}}
	handler := newTestSubscriberHandler(storage, &fakeSubmitter{}, nil)

	req := httptest.NewRequest("DELETE", "/api/subscribers/sub_a", nil)
	rec := httptest.NewRecorder()
	handler.DeleteHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, storage.subscribers)

	req = httptest.NewRequest("DELETE", "/api/subscribers/sub_a", nil)
	rec = httptest.NewRecorder()
	handler.DeleteHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendNowHandler(t *testing.T) {
	storage := &fakeSubscriberStorage{subscribers: []*models.Subscriber{
		{ID: "sub_a", Name: "alice", Email: "alice@example.com"},
	}}
	submitter := &fakeSubmitter{}
	handler := newTestSubscriberHandler(storage, submitter, nil)

	req := httptest.NewRequest("POST", "/api/subscribers/sub_a/send", nil)
	rec := httptest.NewRecorder()
	handler.SendNowHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"sub_a"}, submitter.submitted)
	assert.Contains(t, rec.Body.String(), `"status":"started"`)

	req = httptest.NewRequest("POST", "/api/subscribers/sub_missing/send", nil)
	rec = httptest.NewRecorder()
	handler.SendNowHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, submitter.submitted, 1, "nothing dispatched for an unknown subscriber")
}

func TestMethodGuards(t *testing.T) {
	handler := newTestSubscriberHandler(&fakeSubscriberStorage{}, &fakeSubmitter{}, nil)

	req := httptest.NewRequest("GET", "/api/subscribers/sub_a/send", nil)
	rec := httptest.NewRecorder()
	handler.SendNowHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest("PUT", "/api/subscribers", nil)
	rec = httptest.NewRecorder()
	handler.RegisterHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
