package booking

type CreateBookingRequest struct {
	SlotID    int64 `json:"slot_id" binding:"required"`
	ServiceID int64 `json:"service_id" binding:"required"`
	// CustomerID lets an admin book on a customer's behalf; ignored for
	// non-admin callers.
	CustomerID  int64  `json:"customer_id"`
	VehicleType string `json:"vehicle_type"`
	Address     string `json:"address" binding:"required"`
	// InitiatePayment starts the booking in processing instead of pending
	// and stamps a payment deadline.
	InitiatePayment bool   `json:"initiate_payment"`
	Notes           string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type RescheduleRequest struct {
	NewSlotID int64  `json:"new_slot_id" binding:"required"`
	Reason    string `json:"reason"`
}

type CancelRequest struct {
	Reason       string  `json:"reason" binding:"required"`
	RefundAmount float64 `json:"refund_amount"`
}

type PaymentWebhookRequest struct {
	ReferenceCode string `json:"reference_code" binding:"required"`
	Outcome       string `json:"outcome" binding:"required"` // "paid" or "failed"
}
