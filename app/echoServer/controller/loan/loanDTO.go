package loan

type RenewReq struct {
	RenewalDate string `json:"renewal_date" validate:"required"`
}

type CheckoutReq struct {
	BorrowerID int64  `json:"borrower_id" validate:"required,gt=0"`
	DueBack    string `json:"due_back" validate:"required"`
}
