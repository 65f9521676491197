package order

// OrderState drives lifecycle transitions. Each state only overrides the
// events it accepts; everything else is rejected by rejectAll.
type OrderState interface {
	Status() Status
	OnInventoryReserved(o *Order) (OrderState, error)
	OnInventoryFailed(o *Order, reason string) (OrderState, error)
	OnPaymentSucceeded(o *Order) (OrderState, error)
	OnPaymentFailed(o *Order, reason string) (OrderState, error)
}

type rejectAll struct{}

func (rejectAll) OnInventoryReserved(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (rejectAll) OnInventoryFailed(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (rejectAll) OnPaymentSucceeded(*Order) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (rejectAll) OnPaymentFailed(*Order, string) (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type pendingState struct{ rejectAll }

func (pendingState) Status() Status { return StatusPending }

func (pendingState) OnInventoryReserved(o *Order) (OrderState, error) {
	o.FailureReason = ""
	return inventoryReservedState{}, nil
}

func (pendingState) OnInventoryFailed(o *Order, reason string) (OrderState, error) {
	o.FailureReason = reason
	return inventoryFailedState{}, nil
}

type inventoryReservedState struct{ rejectAll }

func (inventoryReservedState) Status() Status { return StatusInventoryReserved }

// duplicate reservation events are tolerated
func (inventoryReservedState) OnInventoryReserved(*Order) (OrderState, error) {
	return inventoryReservedState{}, nil
}

func (inventoryReservedState) OnPaymentSucceeded(o *Order) (OrderState, error) {
	o.FailureReason = ""
	return completedState{}, nil
}

func (inventoryReservedState) OnPaymentFailed(o *Order, reason string) (OrderState, error) {
	o.FailureReason = reason
	return paymentFailedState{}, nil
}

type inventoryFailedState struct{ rejectAll }

func (inventoryFailedState) Status() Status { return StatusInventoryFailed }

func (inventoryFailedState) OnInventoryFailed(o *Order, reason string) (OrderState, error) {
	o.FailureReason = reason
	return inventoryFailedState{}, nil
}

type completedState struct{ rejectAll }

func (completedState) Status() Status { return StatusCompleted }

func (completedState) OnPaymentSucceeded(*Order) (OrderState, error) {
	return completedState{}, nil
}

// paymentFailedState keeps the stock reserved so the payment can be retried.
type paymentFailedState struct{ rejectAll }

func (paymentFailedState) Status() Status { return StatusPaymentFailed }

func (paymentFailedState) OnPaymentSucceeded(o *Order) (OrderState, error) {
	o.FailureReason = ""
	return completedState{}, nil
}

func (paymentFailedState) OnPaymentFailed(o *Order, reason string) (OrderState, error) {
	o.FailureReason = reason
	return paymentFailedState{}, nil
}
