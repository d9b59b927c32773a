package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/application"
	domcart "github.com/Zhima-Mochi/pizzeria/internal/domain/cart"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/notification"
	domain "github.com/Zhima-Mochi/pizzeria/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/pizzeria/internal/domain/outbox"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/pizzeria/internal/domain/user"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService    = "order-service"
	useCaseCheckout = "order.checkout"
	spanPrefix      = "UC."
	publishTimeout  = 300 * time.Millisecond
	paymentPeer     = "payment"
	paymentEndpoint = "charge"
	notifyPeer      = "notification"
	notifyEndpoint  = "send"
	publishPeer     = "outbox"
	publishEndpoint = "order.placed"
	defaultCurrency = "usd"
	defaultSender   = "orders@pizzeria.local"
)

// Checkout stages reported on failures past the point where something was committed.
const (
	StagePayment      = "payment"
	StageOrderSave    = "order_save"
	StageUserUpdate   = "user_update"
	StageNotification = "notification"
	StageCartCleanup  = "cart_cleanup"
)

var (
	ErrPaymentTokenRequired = apperr.New(apperr.Validation, "missing required inputs, or inputs are invalid")
	ErrCartEmpty            = apperr.New(apperr.NotFound, "user's cart is empty")
)

type CheckoutOptions struct {
	Currency string
	// Sender is the From address of receipts.
	Sender string
}

// CheckoutUseCase turns the caller's cart into a paid order.
//
// Stages run strictly in order. A failure before the charge leaves no trace; a
// failure after it is reported with its stage and nothing already committed is
// rolled back.
type CheckoutUseCase struct {
	tokens    TokenResolver
	carts     domcart.Repository
	users     domuser.Repository
	orders    domain.Repository
	payments  PaymentPort
	notifier  NotificationPort
	ids       application.IDGenerator
	publisher domoutbox.Publisher
	tel       observability.Observability
	opts      CheckoutOptions

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

var _ application.UseCase[CheckoutInput, *domain.Order] = (*CheckoutUseCase)(nil)

func NewCheckoutUseCase(
	tokens TokenResolver,
	carts domcart.Repository,
	users domuser.Repository,
	orders domain.Repository,
	payments PaymentPort,
	notifier NotificationPort,
	ids application.IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
	opts CheckoutOptions,
) *CheckoutUseCase {
	tel = observability.Or(tel)
	if publisher == nil {
		publisher = domoutbox.NopPublisher{}
	}
	if opts.Currency == "" {
		opts.Currency = defaultCurrency
	}
	if opts.Sender == "" {
		opts.Sender = defaultSender
	}
	m := tel.Metrics()
	return &CheckoutUseCase{
		tokens:       tokens,
		carts:        carts,
		users:        users,
		orders:       orders,
		payments:     payments,
		notifier:     notifier,
		ids:          ids,
		publisher:    publisher,
		tel:          tel,
		opts:         opts,
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

type CheckoutInput struct {
	Token        string
	PaymentToken string
}

func (uc *CheckoutUseCase) Execute(ctx context.Context, cmd CheckoutInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseCheckout))
	ctx = logctx.With(ctx, logger)

	var orderID, username string
	var publishErr error

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"Checkout",
		attribute.String("use_case", useCaseCheckout),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseCheckout),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat,
			observability.L("use_case", useCaseCheckout),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if username != "" {
			fields = append(fields, observability.F("username", username))
		}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if stage := apperr.StageOf(err); stage != "" {
			fields = append(fields, observability.F("stage", stage))
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}()

	// 1. payment token
	paymentToken := strings.TrimSpace(cmd.PaymentToken)
	if paymentToken == "" {
		outcome, statusText = "error", "PAYMENT_TOKEN_REQUIRED"
		return nil, ErrPaymentTokenRequired
	}

	// 2. caller identity
	username, err = uc.tokens.Resolve(ctx, cmd.Token)
	if err != nil {
		outcome, statusText = "error", "UNAUTHORIZED"
		return nil, err
	}
	span.SetAttributes(attribute.String("user.name", username))

	// 3. cart
	c, err := uc.carts.Get(ctx, username)
	if err != nil {
		outcome, statusText = "error", "CART_LOAD_FAILED"
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, ErrCartEmpty
		}
		return nil, err
	}
	if len(c.Items) == 0 {
		outcome, statusText = "error", "CART_EMPTY"
		return nil, ErrCartEmpty
	}

	// 4. user
	u, err := uc.users.Get(ctx, username)
	if err != nil {
		outcome, statusText = "error", "USER_LOAD_FAILED"
		return nil, err
	}

	// 5. payment
	confirmation, err := uc.charge(ctx, payment.Charge{
		Amount:      c.Total,
		Currency:    uc.opts.Currency,
		Description: fmt.Sprintf("Pizza's order for: %s", username),
		Source:      paymentToken,
	})
	if err != nil {
		outcome, statusText = "error", "PAYMENT_FAILED"
		return nil, apperr.AtStage(apperr.Upstream, StagePayment, "payment was declined or could not be processed", err)
	}
	span.AddEvent("order.paid", trace.WithAttributes(attribute.String("payment.id", confirmation.ID)))

	// 6. order
	orderID = uc.ids.NewID()
	o := domain.New(orderID, username, u.Email, c.Snapshot(), *confirmation)
	if err := uc.orders.Insert(ctx, o); err != nil {
		outcome, statusText = "error", "ORDER_SAVE_FAILED"
		return nil, apperr.AtStage(apperr.Storage, StageOrderSave, "failed to save order data", err)
	}

	// 7. order history
	u.AppendOrder(orderID)
	if err := uc.users.Update(ctx, u); err != nil {
		outcome, statusText = "error", "USER_UPDATE_FAILED"
		return nil, apperr.AtStage(apperr.Storage, StageUserUpdate, "failed to record the order on the user", err)
	}

	// 8. receipt
	receipt, err := uc.notify(ctx, notification.Message{
		Subject: fmt.Sprintf("Your receipt for: Pizza's order#:%s for: %s", orderID, username),
		From:    uc.opts.Sender,
		To:      u.Email,
		Body:    receiptBody(o),
	})
	if err != nil {
		outcome, statusText = "error", "NOTIFICATION_FAILED"
		return nil, apperr.AtStage(apperr.Upstream, StageNotification, "failed to send email notification", err)
	}

	// 9. attach receipt, empty cart
	o.AttachReceipt(*receipt)
	if err := uc.orders.Update(ctx, o); err != nil {
		outcome, statusText = "error", "RECEIPT_SAVE_FAILED"
		return nil, apperr.AtStage(apperr.Storage, StageCartCleanup, "failed to attach the receipt to the order", err)
	}
	if err := uc.carts.Delete(ctx, username); err != nil {
		outcome, statusText = "error", "CART_CLEANUP_FAILED"
		return nil, apperr.AtStage(apperr.Storage, StageCartCleanup, "failed to cleanup user's cart", err)
	}
	u.UnlinkCart()
	if err := uc.users.Update(ctx, u); err != nil {
		outcome, statusText = "error", "CART_UNLINK_FAILED"
		return nil, apperr.AtStage(apperr.Storage, StageCartCleanup, "failed to unlink the cart from the user", err)
	}

	publishErr = uc.publish(ctx, domain.NewPlacedEvent(o))
	if publishErr != nil {
		statusText = "EVENT_PUBLISH_FAILED"
	}

	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.Float64("order.total", o.Total),
	)
	span.AddEvent("order.placed", trace.WithAttributes(attribute.String("order.id", orderID)))
	return o, nil
}

func (uc *CheckoutUseCase) charge(ctx context.Context, c payment.Charge) (*payment.Confirmation, error) {
	ctx, span := uc.tel.Tracer().Start(ctx, "Payment.Charge",
		attribute.Float64("payment.amount", c.Amount),
		attribute.String("payment.currency", c.Currency),
	)
	defer span.End()

	start := time.Now()
	confirmation, err := uc.payments.Charge(ctx, c)
	uc.external(paymentPeer, paymentEndpoint, err, start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "PAYMENT_FAILED")
		return nil, err
	}
	return confirmation, nil
}

func (uc *CheckoutUseCase) notify(ctx context.Context, m notification.Message) (*notification.Receipt, error) {
	ctx, span := uc.tel.Tracer().Start(ctx, "Notification.Send")
	defer span.End()

	start := time.Now()
	receipt, err := uc.notifier.Send(ctx, m)
	uc.external(notifyPeer, notifyEndpoint, err, start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "NOTIFICATION_FAILED")
		return nil, err
	}
	return receipt, nil
}

// publish is best-effort; the order is already complete.
func (uc *CheckoutUseCase) publish(ctx context.Context, e domoutbox.Event) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := uc.publisher.Publish(pubCtx, e)
	if err == nil && pubCtx.Err() != nil {
		err = pubCtx.Err()
	}
	uc.external(publishPeer, publishEndpoint, err, start)
	if err != nil {
		logctx.FromOr(ctx, uc.log).Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
	return err
}

func (uc *CheckoutUseCase) external(peer, endpoint string, err error, start time.Time) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	uc.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	uc.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
}

func receiptBody(o *domain.Order) string {
	var b strings.Builder
	b.WriteString("Your order was successful!\r\n")
	for _, it := range o.Details.Cart.Items {
		fmt.Fprintf(&b, "%d x %s\r\n", it.Quantity, it.Name)
	}
	fmt.Fprintf(&b, "Total: %.2f %s\r\n", o.Total, strings.ToUpper(o.Details.Payment.Currency))
	fmt.Fprintf(&b, "Payment: %s (%s)\r\n", o.Details.Payment.ID, o.Details.Payment.Status)
	return b.String()
}
