package payment

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	pstat "github.com/Zhima-Mochi/corralon-storefront/internal/domain/payment"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	paymentService        = "payment-service"
	useCasePaymentProcess = "payment.process"
	paymentDeclinedReason = "payment_declined"
)

var (
	ErrOrderIDRequired = errors.New("payment: order id is required")
	ErrAlreadyPaid     = errors.New("payment: order already paid")
	ErrNotReady        = errors.New("payment: order not ready for payment")
)

type ProcessPaymentInput struct {
	OrderID string
}

type ProcessPaymentResult struct {
	Status pstat.Status
}

// ProcessPaymentUseCase charges a reserved order and records the outcome on
// it. A declined charge is a result, not an error.
type ProcessPaymentUseCase struct {
	orderRepo domorder.Repository
	processor pstat.Processor
	publisher domoutbox.Publisher
	ins       *application.Instruments
}

func NewProcessPaymentUseCase(
	orderRepo domorder.Repository,
	processor pstat.Processor,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{
		orderRepo: orderRepo,
		processor: processor,
		publisher: publisher,
		ins:       application.NewInstruments(tel, paymentService),
	}
}

func (uc *ProcessPaymentUseCase) Execute(ctx context.Context, cmd ProcessPaymentInput) (_ *ProcessPaymentResult, err error) {
	ctx, call := uc.ins.Begin(ctx, useCasePaymentProcess, "ProcessPayment",
		attribute.String("order.id", cmd.OrderID),
	)
	result := &ProcessPaymentResult{Status: pstat.StatusFailed}
	defer func() {
		call.Span().SetAttributes(attribute.String("payment.status", string(result.Status)))
		call.Field("payment_status", string(result.Status))
		call.End(err)
	}()
	call.Field("order_id", cmd.OrderID)

	if cmd.OrderID == "" {
		call.Fail("ORDER_ID_REQUIRED")
		return nil, ErrOrderIDRequired
	}

	order, err := uc.orderRepo.Get(ctx, cmd.OrderID)
	if err != nil {
		call.Fail("ORDER_LOOKUP_FAILED")
		return nil, err
	}
	if order.Status == domorder.StatusCompleted {
		call.Fail("ORDER_ALREADY_PAID")
		return nil, ErrAlreadyPaid
	}
	if !order.CanProcessPayment() {
		call.Fail("ORDER_NOT_READY")
		return nil, ErrNotReady
	}
	call.Field("amount", order.Total.String())

	status, err := uc.processor.Pay(ctx, order.ID, order.Total)
	result.Status = status
	if err != nil {
		call.Fail("PAYMENT_PROCESSOR_FAILED")
		result.Status = pstat.StatusFailed
		return result, err
	}

	switch status {
	case pstat.StatusSuccess:
		err = order.PaymentSucceeded()
	default:
		call.Status("DECLINED")
		call.Field("failure_reason", paymentDeclinedReason)
		err = order.PaymentFailed(paymentDeclinedReason)
	}
	if err != nil {
		call.Fail("STATE_TRANSITION_FAILED")
		result.Status = pstat.StatusFailed
		return result, err
	}

	if err = uc.orderRepo.Update(ctx, order); err != nil {
		call.Fail("ORDER_UPDATE_FAILED")
		return result, err
	}

	if perr := uc.ins.Publish(ctx, uc.publisher, pstat.NewPaymentProcessedEvent(order.ID, result.Status, order.Total)); perr != nil {
		call.Status("EVENT_PUBLISH_FAILED")
	}
	return result, nil
}
