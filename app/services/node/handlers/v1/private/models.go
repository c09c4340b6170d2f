package private

type newPayment struct {
	ReceiverAddress string  `json:"receiver_address" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
}
