package payment

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

const (
	MethodCash         = "CASH"
	MethodCard         = "CARD"
	MethodBankTransfer = "BANK_TRANSFER"

	StatusCompleted = "COMPLETED"
	StatusPending   = "PENDING"
	StatusFailed    = "FAILED"
	StatusRefunded  = "REFUNDED"
)

var (
	// errors
	ErrInvalidStudent      = core.NewInvalidReferenceError("invalid student id")
	ErrTransactionIDExists = core.NewDuplicateError("transaction id already exists")
)

type (
	Payment struct {
		ID            int64       `db:"payment_id" json:"payment_id"`
		StudentID     int64       `db:"student_id" json:"student_id"`
		StudentName   null.String `db:"student_name" json:"student_name"`
		Amount        float64     `db:"amount" json:"amount"`
		PaymentDate   core.Date   `db:"payment_date" json:"payment_date"`
		PaymentMethod string      `db:"payment_method" json:"payment_method"`
		TransactionID string      `db:"transaction_id" json:"transaction_id"`
		Description   null.String `db:"description" json:"description"`
		Status        string      `db:"status" json:"status"`
		CreatedAt     time.Time   `db:"created_date" json:"created_date"`
	}

	// Input is the body of create & update requests.
	Input struct {
		StudentID     int64       `json:"student_id" validate:"required,gt=0"`
		Amount        float64     `json:"amount" validate:"required,gt=0"`
		PaymentDate   core.Date   `json:"payment_date" validate:"required"`
		PaymentMethod string      `json:"payment_method" validate:"omitempty,oneof=CASH CARD BANK_TRANSFER"`
		TransactionID string      `json:"transaction_id" validate:"omitempty,max=100"`
		Description   null.String `json:"description"`
		Status        string      `json:"status" validate:"omitempty,oneof=COMPLETED PENDING FAILED REFUNDED"`
	}

	QueryFilter struct {
		Search    string // case-insensitive match on student name, transaction id or description
		StudentID int64
		Status    string
		Ordering  []core.DBOrdering
	}

	// StudentTotal is the COMPLETED payments of an active student.
	StudentTotal struct {
		StudentID       int64     `boil:"student_id" json:"student_id"`
		StudentName     string    `boil:"student_name" json:"student_name"`
		TotalPayments   int       `boil:"total_payments" json:"total_payments"`
		TotalAmount     float64   `boil:"total_amount" json:"total_amount"`
		LastPaymentDate core.Date `boil:"last_payment_date" json:"last_payment_date"`
		PaymentStatus   string    `boil:"payment_status" json:"payment_status"`
	}
)

func (in *Input) Validate(validate *validator.Validate) error {
	in.PaymentMethod = strings.ToUpper(core.CleanString(in.PaymentMethod))
	in.TransactionID = core.CleanString(in.TransactionID)
	in.Status = strings.ToUpper(core.CleanString(in.Status))
	return validate.Struct(in)
}

func (in Input) apply(pmt Payment) Payment {
	pmt.StudentID = in.StudentID
	pmt.Amount = core.Round2(in.Amount)
	pmt.PaymentDate = in.PaymentDate
	pmt.Description = in.Description
	if in.PaymentMethod != "" {
		pmt.PaymentMethod = in.PaymentMethod
	}
	if pmt.PaymentMethod == "" {
		pmt.PaymentMethod = MethodBankTransfer
	}
	if in.TransactionID != "" {
		pmt.TransactionID = in.TransactionID
	}
	if pmt.TransactionID == "" {
		pmt.TransactionID = NewTransactionID()
	}
	if in.Status != "" {
		pmt.Status = in.Status
	}
	if pmt.Status == "" {
		pmt.Status = StatusCompleted
	}
	return pmt
}

// NewTransactionID generates a reference for payments recorded without one.
func NewTransactionID() string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
}
