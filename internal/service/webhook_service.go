package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aipath-api/internal/constants"
	"github.com/aipath-api/internal/logger"
	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/payment/stripe"
	"github.com/aipath-api/internal/queue"
	"github.com/aipath-api/internal/repository"

	"go.uber.org/zap"
)

const (
	webhookRetryDelay     = 30 * time.Second
	webhookLastErrorLimit = 1000
	sweepBatchSize        = 100
)

// WebhookVerifier Stripe 回调验签能力
type WebhookVerifier interface {
	VerifyWebhook(body []byte, signatureHeader string) (*stripe.Event, error)
}

// ReconcileTaskQueue 对账重试任务投递能力
type ReconcileTaskQueue interface {
	Enabled() bool
	EnqueueEntitlementReconcile(payload queue.EntitlementReconcilePayload, delay time.Duration) error
}

// Reconciler 权益对账能力
type Reconciler interface {
	Reconcile(input ReconcileInput) (*ReconcileResult, error)
}

// WebhookService Stripe 回调处理服务
type WebhookService struct {
	verifier   WebhookVerifier
	eventRepo  repository.PaymentEventRepository
	reconciler Reconciler
	taskQueue  ReconcileTaskQueue
	now        func() time.Time
}

// NewWebhookService 创建回调处理服务
func NewWebhookService(verifier WebhookVerifier, eventRepo repository.PaymentEventRepository, reconciler Reconciler, taskQueue ReconcileTaskQueue) *WebhookService {
	return &WebhookService{
		verifier:   verifier,
		eventRepo:  eventRepo,
		reconciler: reconciler,
		taskQueue:  taskQueue,
		now:        time.Now,
	}
}

// StripeWebhookInput Stripe 回调原始请求
type StripeWebhookInput struct {
	Body      []byte
	Signature string
	Context   context.Context
}

// StripeWebhookResult Stripe 回调处理结果
type StripeWebhookResult struct {
	EventID   string
	EventType string
	// Duplicate 事件此前已处理完成
	Duplicate bool
	// Ignored 已验签但无需处理（其他事件类型或元数据不完整）
	Ignored bool
	// Deferred 对账失败但重试任务已投递
	Deferred  bool
	Reconcile *ReconcileResult
}

// HandleStripeWebhook 验签、记录台账并分发事件。
// 返回 nil error 表示可以向 Stripe 确认接收；返回错误时 Stripe 会重新投递。
func (s *WebhookService) HandleStripeWebhook(input StripeWebhookInput) (*StripeWebhookResult, error) {
	event, err := s.verifier.VerifyWebhook(input.Body, input.Signature)
	if err != nil {
		logger.Warnw("stripe_webhook_signature_invalid", "body_size", len(input.Body), "error", err)
		if errors.Is(err, stripe.ErrResponseInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrWebhookPayloadInvalid, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrWebhookSignatureInvalid, err)
	}
	if event.ID == "" {
		logger.Warnw("stripe_webhook_event_id_missing", "event_type", event.Type)
		return nil, fmt.Errorf("%w: missing event id", ErrWebhookPayloadInvalid)
	}
	log := logger.SW("event_id", event.ID, "event_type", event.Type)
	result := &StripeWebhookResult{EventID: event.ID, EventType: event.Type}

	record, created, err := s.eventRepo.RecordIfAbsent(&models.PaymentEvent{
		Provider:        constants.PaymentProviderStripe,
		EventID:         event.ID,
		EventType:       event.Type,
		StripeSessionID: peekSessionID(event),
		Status:          constants.PaymentEventStatusReceived,
		Payload:         string(input.Body),
	})
	if err != nil {
		log.Errorw("stripe_webhook_ledger_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEventLedgerFailed, err)
	}
	if !created && record.IsSettled() {
		log.Infow("stripe_webhook_duplicate", "status", record.Status)
		result.Duplicate = true
		return result, nil
	}

	outcome, err := s.dispatch(record, event, log)
	result.Ignored = outcome.ignored
	result.Reconcile = outcome.reconcile
	if err == nil {
		return result, nil
	}

	if enqueueErr := s.enqueueRetry(record, webhookRetryDelay); enqueueErr != nil {
		log.Errorw("stripe_webhook_retry_enqueue_failed", "error", enqueueErr)
		return nil, err
	}
	log.Warnw("stripe_webhook_reconcile_deferred", "error", err)
	result.Deferred = true
	return result, nil
}

// ReprocessPaymentEvent 从台账重放事件，供重试任务调用；失败返回错误以便任务重试
func (s *WebhookService) ReprocessPaymentEvent(paymentEventID uint) error {
	record, err := s.eventRepo.GetByID(paymentEventID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEventLedgerFailed, err)
	}
	if record == nil {
		return ErrPaymentEventNotFound
	}
	log := logger.SW("event_id", record.EventID, "event_type", record.EventType, "payment_event_id", record.ID)
	if record.IsSettled() {
		log.Infow("payment_event_reprocess_skipped", "status", record.Status)
		return nil
	}
	event, err := stripe.ParseEvent([]byte(record.Payload))
	if err != nil {
		log.Warnw("payment_event_payload_invalid", "error", err)
		s.markEvent(record, constants.PaymentEventStatusIgnored, err.Error(), log)
		return nil
	}
	_, err = s.dispatch(record, event, log)
	return err
}

// SweepFailedEvents 重新投递长时间停留在失败状态的事件
func (s *WebhookService) SweepFailedEvents(staleAfter time.Duration, maxAttempts int) (int, error) {
	if s.taskQueue == nil || !s.taskQueue.Enabled() {
		return 0, ErrQueueUnavailable
	}
	before := s.now().Add(-staleAfter)
	records, err := s.eventRepo.ListStale(constants.PaymentEventStatusFailed, before, maxAttempts, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEventLedgerFailed, err)
	}
	enqueued := 0
	for i := range records {
		if err := s.enqueueRetry(&records[i], 0); err != nil {
			logger.Warnw("payment_event_sweep_enqueue_failed", "payment_event_id", records[i].ID, "error", err)
			continue
		}
		enqueued++
	}
	if enqueued > 0 {
		logger.Infow("payment_event_sweep_enqueued", "count", enqueued)
	}
	return enqueued, nil
}

type dispatchOutcome struct {
	ignored   bool
	reconcile *ReconcileResult
}

func (s *WebhookService) dispatch(record *models.PaymentEvent, event *stripe.Event, log *zap.SugaredLogger) (dispatchOutcome, error) {
	if err := s.eventRepo.IncrementAttempts(record.ID); err != nil {
		log.Warnw("payment_event_attempt_increment_failed", "error", err)
	}

	if event.Type != constants.StripeEventCheckoutSessionCompleted && event.Type != constants.StripeEventCheckoutSessionAsyncPaymentSucceeded {
		log.Infow("stripe_webhook_event_ignored")
		s.markEvent(record, constants.PaymentEventStatusIgnored, "unhandled event type", log)
		return dispatchOutcome{ignored: true}, nil
	}

	session, err := stripe.DecodeCheckoutSession(event.Object)
	if err != nil {
		log.Warnw("stripe_webhook_session_invalid", "error", err)
		s.markEvent(record, constants.PaymentEventStatusIgnored, err.Error(), log)
		return dispatchOutcome{ignored: true}, nil
	}
	// 延迟支付方式在 completed 时尚未到账，等待 async_payment_succeeded 再发放权益
	if strings.EqualFold(strings.TrimSpace(session.PaymentStatus), constants.StripePaymentStatusUnpaid) {
		log.Infow("stripe_webhook_payment_pending", "session_id", session.ID, "payment_status", session.PaymentStatus)
		s.markEvent(record, constants.PaymentEventStatusIgnored, "payment pending", log)
		return dispatchOutcome{ignored: true}, nil
	}
	meta, err := stripe.DecodeCheckoutMetadata(session.Metadata)
	if err != nil {
		log.Warnw("stripe_webhook_metadata_invalid", "session_id", session.ID, "error", err)
		s.markEvent(record, constants.PaymentEventStatusIgnored, err.Error(), log)
		return dispatchOutcome{ignored: true}, nil
	}

	reconciled, err := s.reconciler.Reconcile(ReconcileInput{
		UserID:      meta.UserID,
		CourseID:    meta.CourseID,
		SessionID:   session.ID,
		AmountMinor: session.AmountTotal,
		Currency:    session.Currency,
		ReferrerID:  meta.ReferrerID,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			log.Warnw("stripe_webhook_session_rejected", "session_id", session.ID, "error", err)
			s.markEvent(record, constants.PaymentEventStatusIgnored, err.Error(), log)
			return dispatchOutcome{ignored: true}, nil
		}
		s.markEvent(record, constants.PaymentEventStatusFailed, err.Error(), log)
		return dispatchOutcome{}, err
	}
	s.markEvent(record, constants.PaymentEventStatusProcessed, "", log)
	return dispatchOutcome{reconcile: reconciled}, nil
}

func (s *WebhookService) markEvent(record *models.PaymentEvent, status, lastError string, log *zap.SugaredLogger) {
	var processedAt *time.Time
	if status != constants.PaymentEventStatusFailed {
		now := s.now()
		processedAt = &now
	}
	lastError = truncateUTF8(lastError, webhookLastErrorLimit)
	if err := s.eventRepo.MarkStatus(record.ID, status, lastError, processedAt); err != nil {
		log.Warnw("payment_event_mark_failed", "status", status, "error", err)
		return
	}
	record.Status = status
}

func (s *WebhookService) enqueueRetry(record *models.PaymentEvent, delay time.Duration) error {
	if s.taskQueue == nil || !s.taskQueue.Enabled() {
		return ErrQueueUnavailable
	}
	return s.taskQueue.EnqueueEntitlementReconcile(queue.EntitlementReconcilePayload{
		PaymentEventID: record.ID,
		EventID:        record.EventID,
	}, delay)
}

// truncateUTF8 按字节上限截断，不拆分多字节字符
func truncateUTF8(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}

// peekSessionID 仅用于台账检索，解析失败时留空
func peekSessionID(event *stripe.Event) string {
	if event == nil || !strings.HasPrefix(event.Type, "checkout.session.") || len(event.Object) == 0 {
		return ""
	}
	var object struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Object, &object); err != nil {
		return ""
	}
	return strings.TrimSpace(object.ID)
}
