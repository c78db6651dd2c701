package model

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusDelivering OrderStatus = "delivering"
	StatusServed     OrderStatus = "served"
	StatusDelivered  OrderStatus = "delivered"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPreparing, StatusCancelled},
	StatusPreparing:  {StatusReady, StatusCancelled},
	StatusReady:      {StatusDelivering, StatusServed, StatusDelivered},
	StatusDelivering: {StatusCompleted},
	StatusServed:     {StatusCompleted},
	StatusDelivered:  {StatusCompleted},
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPending, StatusPreparing, StatusReady, StatusDelivering,
		StatusServed, StatusDelivered, StatusCompleted, StatusCancelled,
	}
}

func (s OrderStatus) IsValid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
// Staying in the same status is never a transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return false
	}
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// OrderType is the fulfilment channel.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDineIn   OrderType = "dine-in"
)

func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeDelivery, OrderTypeTakeaway, OrderTypeDineIn:
		return true
	}
	return false
}

// UsesRider reports whether orders of this type are handed to a rider once ready.
func (t OrderType) UsesRider() bool {
	return t == OrderTypeDelivery || t == OrderTypeTakeaway
}

// ServedStatus is the status staff moves a ready order to when serving it.
func (t OrderType) ServedStatus() OrderStatus {
	if t == OrderTypeDineIn {
		return StatusServed
	}
	return StatusDelivered
}

type PaymentMethod string

const (
	PaymentQR       PaymentMethod = "qr"
	PaymentCOD      PaymentMethod = "cod"
	PaymentStaff    PaymentMethod = "staff"
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// IsCheckoutMethod reports whether a customer may pick m at checkout.
func (m PaymentMethod) IsCheckoutMethod() bool {
	return m == PaymentQR || m == PaymentCOD || m == PaymentStaff
}

// IsCollectedMethod reports whether staff may record m when collecting payment.
func (m PaymentMethod) IsCollectedMethod() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentTransfer
}

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusAwaiting      PaymentStatus = "awaiting"
	PaymentStatusAwaitingStaff PaymentStatus = "awaiting-staff"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// InitialPaymentStatus is the payment flag an order starts with for a checkout method.
func InitialPaymentStatus(m PaymentMethod) PaymentStatus {
	switch m {
	case PaymentQR:
		return PaymentStatusAwaiting
	case PaymentStaff:
		return PaymentStatusAwaitingStaff
	default:
		return PaymentStatusPending
	}
}
