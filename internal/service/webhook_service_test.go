package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/repository"
)

type receivedHook struct {
	event     string
	signature string
	body      []byte
}

// hookReceiver records deliveries; the first failFirst requests get a 500
type hookReceiver struct {
	mu        sync.Mutex
	received  []receivedHook
	calls     atomic.Int32
	failFirst int32
}

func (h *hookReceiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := h.calls.Add(1)
	if n <= h.failFirst {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	body, _ := io.ReadAll(r.Body)
	h.mu.Lock()
	h.received = append(h.received, receivedHook{
		event:     r.Header.Get(HeaderWebhookEvent),
		signature: r.Header.Get(HeaderWebhookSignature),
		body:      body,
	})
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (h *hookReceiver) events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.received))
	for _, r := range h.received {
		out = append(out, r.event)
	}
	return out
}

func newDispatcherFixture(t *testing.T) (WebhookService, *WebhookDispatcher) {
	t.Helper()
	repo := repository.NewWebhookRepository(setupTestDB(t))
	d := NewWebhookDispatcher(repo, DispatcherConfig{
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		Concurrency: 2,
		BaseBackoff: time.Millisecond,
	})
	return NewWebhookService(repo), d
}

func TestWebhookService_CRUD(t *testing.T) {
	svc, _ := newDispatcherFixture(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, "site-a", &domain.WebhookRequest{
		URL:    "https://example.com/hook",
		Secret: "s3cret",
		Events: []string{domain.EventContentUpdated, domain.EventContentUpdated},
	})
	require.NoError(t, err)
	assert.True(t, w.Active)
	assert.Equal(t, []string{domain.EventContentUpdated}, []string(w.Events))

	list, err := svc.List(ctx, "site-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Secret)

	inactive := false
	updated, err := svc.Update(ctx, "site-a", w.WebhookID, &domain.WebhookRequest{
		URL:           "https://example.com/hook2",
		Events:        []string{"*"},
		TrackedFields: []string{"title"},
		Active:        &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "https://example.com/hook2", updated.URL)

	other, err := svc.List(ctx, "site-b")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, svc.Delete(ctx, "site-a", w.WebhookID))
	assert.Equal(t, common.KindNotFound, common.KindOf(svc.Delete(ctx, "site-a", w.WebhookID)))
}

func TestWebhookService_RejectsUnknownEvents(t *testing.T) {
	svc, _ := newDispatcherFixture(t)

	_, err := svc.Create(context.Background(), "site-a", &domain.WebhookRequest{
		URL: "https://example.com/hook", Events: []string{"content.exploded"},
	})
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	_, err = svc.Create(context.Background(), "site-a", &domain.WebhookRequest{
		URL: "ftp://example.com/hook", Events: []string{domain.EventContentCreated},
	})
	assert.Equal(t, common.KindValidation, common.KindOf(err))
}

func TestWebhookDispatcher_SignsAndFiltersTrackedFields(t *testing.T) {
	receiver := &hookReceiver{}
	server := httptest.NewServer(receiver)
	defer server.Close()

	svc, d := newDispatcherFixture(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "site-a", &domain.WebhookRequest{
		URL:           server.URL,
		Secret:        "s3cret",
		Events:        []string{domain.EventContentUpdated, domain.EventContentPublished},
		TrackedFields: []string{"title"},
	})
	require.NoError(t, err)

	// data 만 바뀐 수정은 전송하지 않음
	d.Publish(ctx, Event{Name: domain.EventContentUpdated, SiteID: "site-a", ChangedFields: []string{"data.body"}})
	d.Wait()
	assert.Empty(t, receiver.events())

	d.Publish(ctx, Event{Name: domain.EventContentUpdated, SiteID: "site-a", ChangedFields: []string{"title"}})
	d.Publish(ctx, Event{Name: domain.EventContentPublished, SiteID: "site-a", ChangedFields: []string{"status"}})
	d.Publish(ctx, Event{Name: domain.EventContentDeleted, SiteID: "site-a"})
	d.Publish(ctx, Event{Name: domain.EventContentUpdated, SiteID: "site-b", ChangedFields: []string{"title"}})
	d.Wait()

	assert.ElementsMatch(t, []string{domain.EventContentUpdated, domain.EventContentPublished}, receiver.events())

	receiver.mu.Lock()
	defer receiver.mu.Unlock()
	for _, r := range receiver.received {
		assert.Equal(t, SignPayload("s3cret", r.body), r.signature)

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(r.body, &payload))
		assert.Equal(t, "site-a", payload["siteId"])
		assert.Equal(t, r.event, payload["event"])
		assert.NotEmpty(t, payload["occurredAt"])
	}
}

func TestWebhookDispatcher_RetriesServerErrors(t *testing.T) {
	receiver := &hookReceiver{failFirst: 2}
	server := httptest.NewServer(receiver)
	defer server.Close()

	svc, d := newDispatcherFixture(t)
	_, err := svc.Create(context.Background(), "site-a", &domain.WebhookRequest{
		URL: server.URL, Events: []string{domain.EventFormSubmissionCreated},
	})
	require.NoError(t, err)

	d.Publish(context.Background(), Event{Name: domain.EventFormSubmissionCreated, SiteID: "site-a"})
	d.Wait()

	assert.Equal(t, int32(3), receiver.calls.Load())
	assert.Equal(t, []string{domain.EventFormSubmissionCreated}, receiver.events())
}

func TestWebhookDispatcher_GivesUpAfterMaxAttempts(t *testing.T) {
	receiver := &hookReceiver{failFirst: 100}
	server := httptest.NewServer(receiver)
	defer server.Close()

	svc, d := newDispatcherFixture(t)
	_, err := svc.Create(context.Background(), "site-a", &domain.WebhookRequest{
		URL: server.URL, Events: []string{"*"},
	})
	require.NoError(t, err)

	d.Publish(context.Background(), Event{Name: domain.EventContentCreated, SiteID: "site-a"})
	d.Wait()

	assert.Equal(t, int32(3), receiver.calls.Load())
	assert.Empty(t, receiver.events())
}

func TestWebhookDispatcher_PublishSurvivesCanceledRequest(t *testing.T) {
	receiver := &hookReceiver{}
	server := httptest.NewServer(receiver)
	defer server.Close()

	svc, d := newDispatcherFixture(t)
	_, err := svc.Create(context.Background(), "site-a", &domain.WebhookRequest{
		URL: server.URL, Events: []string{domain.EventContentCreated},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	d.Publish(ctx, Event{Name: domain.EventContentCreated, SiteID: "site-a"})
	cancel()
	d.Wait()

	assert.Equal(t, []string{domain.EventContentCreated}, receiver.events())
}

func TestSignPayload(t *testing.T) {
	sig := SignPayload("key", []byte("{}"))
	assert.Regexp(t, `^sha256=[0-9a-f]{64}$`, sig)
	assert.Equal(t, sig, SignPayload("key", []byte("{}")))
	assert.NotEqual(t, sig, SignPayload("other", []byte("{}")))
}
