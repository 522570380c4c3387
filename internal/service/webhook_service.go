package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/repository"
	pkglogger "github.com/damoang/angple-cms/pkg/logger"
)

// Webhook delivery headers
const (
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookEvent     = "X-Webhook-Event"
	HeaderWebhookDelivery  = "X-Webhook-Delivery"
)

// WebhookService webhook registration business logic
type WebhookService interface {
	List(ctx context.Context, siteID string) ([]domain.Webhook, error)
	Get(ctx context.Context, siteID, webhookID string) (*domain.Webhook, error)
	Create(ctx context.Context, siteID string, req *domain.WebhookRequest) (*domain.Webhook, error)
	Update(ctx context.Context, siteID, webhookID string, req *domain.WebhookRequest) (*domain.Webhook, error)
	Delete(ctx context.Context, siteID, webhookID string) error
}

type webhookService struct {
	repo repository.WebhookRepository
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(repo repository.WebhookRepository) WebhookService {
	return &webhookService{repo: repo}
}

// List 목록 응답에는 서명 시크릿을 포함하지 않음
func (s *webhookService) List(ctx context.Context, siteID string) ([]domain.Webhook, error) {
	hooks, err := s.repo.List(ctx, siteID)
	if err != nil {
		return nil, wrapErr("list webhooks", err)
	}
	out := make([]domain.Webhook, 0, len(hooks))
	for _, w := range hooks {
		out = append(out, w.Redacted())
	}
	return out, nil
}

func (s *webhookService) Get(ctx context.Context, siteID, webhookID string) (*domain.Webhook, error) {
	w, err := s.repo.FindByID(ctx, siteID, webhookID)
	if err != nil {
		return nil, wrapErr("get webhook", err)
	}
	r := w.Redacted()
	return &r, nil
}

func (s *webhookService) Create(ctx context.Context, siteID string, req *domain.WebhookRequest) (*domain.Webhook, error) {
	events, err := normalizeEvents(req.Events)
	if err != nil {
		return nil, err
	}
	if err := validateWebhookURL(req.URL); err != nil {
		return nil, err
	}

	w := &domain.Webhook{
		SiteID:        siteID,
		WebhookID:     uuid.NewString(),
		URL:           strings.TrimSpace(req.URL),
		Secret:        req.Secret,
		Events:        events,
		TrackedFields: normalizeTracked(req.TrackedFields),
		Active:        req.Active == nil || *req.Active,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, wrapErr("create webhook", err)
	}
	return w, nil
}

// Update replaces the webhook; an empty secret keeps the stored one
func (s *webhookService) Update(ctx context.Context, siteID, webhookID string, req *domain.WebhookRequest) (*domain.Webhook, error) {
	w, err := s.repo.FindByID(ctx, siteID, webhookID)
	if err != nil {
		return nil, wrapErr("get webhook", err)
	}
	events, err := normalizeEvents(req.Events)
	if err != nil {
		return nil, err
	}
	if err := validateWebhookURL(req.URL); err != nil {
		return nil, err
	}

	w.URL = strings.TrimSpace(req.URL)
	if req.Secret != "" {
		w.Secret = req.Secret
	}
	w.Events = events
	w.TrackedFields = normalizeTracked(req.TrackedFields)
	if req.Active != nil {
		w.Active = *req.Active
	}
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, wrapErr("update webhook", err)
	}
	r := w.Redacted()
	return &r, nil
}

func (s *webhookService) Delete(ctx context.Context, siteID, webhookID string) error {
	return wrapErr("delete webhook", s.repo.Delete(ctx, siteID, webhookID))
}

func normalizeEvents(events []string) ([]string, error) {
	out := make([]string, 0, len(events))
	var unknown []string
	for _, e := range events {
		e = strings.TrimSpace(e)
		if e != "*" && !slices.Contains(domain.WebhookEvents, e) {
			unknown = append(unknown, e)
			continue
		}
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	if len(unknown) > 0 {
		return nil, common.NewValidationError("unknown webhook events", map[string]interface{}{
			"unknown": unknown,
			"allowed": domain.WebhookEvents,
		})
	}
	if len(out) == 0 {
		return nil, common.NewValidationError("events is required", nil)
	}
	return out, nil
}

func normalizeTracked(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func validateWebhookURL(raw string) error {
	u := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
		return common.NewValidationError("webhook url must be http or https", nil)
	}
	return nil
}

// SignPayload returns the X-Webhook-Signature value for body
func SignPayload(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// DispatcherConfig tunes webhook delivery
type DispatcherConfig struct {
	Timeout     time.Duration // per attempt
	MaxAttempts int
	Concurrency int64
	BaseBackoff time.Duration
}

// WebhookDispatcher delivers events to subscribed webhooks in the background
type WebhookDispatcher struct {
	repo   repository.WebhookRepository
	client *http.Client
	sem    *semaphore.Weighted
	cfg    DispatcherConfig
	wg     sync.WaitGroup
}

// NewWebhookDispatcher creates a dispatcher; zero config values get defaults
func NewWebhookDispatcher(repo repository.WebhookRepository, cfg DispatcherConfig) *WebhookDispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	return &WebhookDispatcher{
		repo:   repo,
		client: &http.Client{},
		sem:    semaphore.NewWeighted(cfg.Concurrency),
		cfg:    cfg,
	}
}

// Publish returns immediately; delivery outlives the request context
func (d *WebhookDispatcher) Publish(ctx context.Context, ev Event) {
	ctx = context.WithoutCancel(ctx)
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		hooks, err := d.repo.ListActive(ctx, ev.SiteID)
		if err != nil {
			l := pkglogger.WithSite(ev.SiteID)
			l.Error().Err(err).Msg("failed to load webhooks")
			return
		}

		var body []byte
		for _, w := range hooks {
			if !d.wants(w, ev) {
				continue
			}
			if body == nil {
				if body, err = json.Marshal(ev); err != nil {
					pkglogger.GetLogger().Error().Err(err).Str("event", ev.Name).Msg("failed to encode webhook payload")
					return
				}
			}
			d.wg.Add(1)
			go func(w *domain.Webhook) {
				defer d.wg.Done()
				d.deliver(ctx, w, ev.Name, body)
			}(w)
		}
	}()
}

// Wait blocks until in-flight deliveries finish
func (d *WebhookDispatcher) Wait() {
	d.wg.Wait()
}

// wants 수정 이벤트는 추적 필드가 바뀐 경우에만 전송
func (d *WebhookDispatcher) wants(w *domain.Webhook, ev Event) bool {
	if !w.Subscribes(ev.Name) {
		return false
	}
	if ev.Name == domain.EventContentUpdated {
		return w.Tracks(ev.ChangedFields)
	}
	return true
}

func (d *WebhookDispatcher) deliver(ctx context.Context, w *domain.Webhook, event string, body []byte) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer d.sem.Release(1)

	start := time.Now()
	deliveryID := uuid.NewString()
	logger := pkglogger.GetLogger().With().
		Str("webhook_id", w.WebhookID).
		Str("event", event).
		Str("delivery_id", deliveryID).
		Logger()

	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		retry, err := d.attempt(ctx, w, event, deliveryID, body)
		if err == nil {
			webhookDeliveriesTotal.WithLabelValues(event, "success").Inc()
			webhookDeliveryDuration.Observe(time.Since(start).Seconds())
			logger.Debug().Int("attempt", attempt).Msg("webhook delivered")
			return
		}
		lastErr = err
		if !retry || attempt == d.cfg.MaxAttempts {
			break
		}

		backoff := d.cfg.BaseBackoff * time.Duration(1<<(attempt-1))
		logger.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("webhook delivery failed, retrying")
		time.Sleep(backoff)
	}

	webhookDeliveriesTotal.WithLabelValues(event, "failure").Inc()
	webhookDeliveryDuration.Observe(time.Since(start).Seconds())
	logger.Error().Err(lastErr).Msg("webhook delivery gave up")
}

// attempt reports whether a failure is worth retrying
func (d *WebhookDispatcher) attempt(ctx context.Context, w *domain.Webhook, event, deliveryID string, body []byte) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "angple-cms-webhook/1.0")
	req.Header.Set(HeaderWebhookEvent, event)
	req.Header.Set(HeaderWebhookDelivery, deliveryID)
	if w.Secret != "" {
		req.Header.Set(HeaderWebhookSignature, SignPayload(w.Secret, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}
	retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestTimeout
	return retry, fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
}
