package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/payment"
	"github.com/trezcool/englishcenter/storage/database"
)

const paymentSelect = `
	SELECT p.payment_id, p.student_id, s.full_name AS student_name, p.amount, p.payment_date, p.payment_method,
		p.transaction_id, p.description, p.status, p.created_date
	FROM payments p
	LEFT JOIN students s ON s.student_id = p.student_id`

var paymentOrdering = map[string]string{
	"payment_id":   "p.payment_id",
	"payment_date": "p.payment_date",
	"amount":       "p.amount",
	"student_name": "s.full_name",
	"status":       "p.status",
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) mapping() database.Mapping {
	return database.Mapping{
		NotFound:   core.NewNotFoundError("payment"),
		ForeignKey: payment.ErrInvalidStudent,
		Unique:     payment.ErrTransactionIDExists,
	}
}

func (repo *paymentRepository) Create(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	var id int64
	err := repo.db.GetContext(ctx, &id, `
		INSERT INTO payments (student_id, amount, payment_date, payment_method, transaction_id, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING payment_id`,
		pmt.StudentID, pmt.Amount, pmt.PaymentDate, pmt.PaymentMethod, pmt.TransactionID, pmt.Description, pmt.Status,
	)
	if err != nil {
		return payment.Payment{}, database.TranslateError(err, "inserting payment", repo.mapping())
	}
	return repo.Get(ctx, id)
}

func (repo *paymentRepository) Get(ctx context.Context, id int64) (payment.Payment, error) {
	var pmt payment.Payment
	if err := repo.db.GetContext(ctx, &pmt, paymentSelect+` WHERE p.payment_id = $1`, id); err != nil {
		return payment.Payment{}, database.TranslateError(err, "getting payment", repo.mapping())
	}
	return pmt, nil
}

func (repo *paymentRepository) Query(ctx context.Context, qf payment.QueryFilter) ([]payment.Payment, error) {
	var f filter
	f.search(qf.Search, "s.full_name", "p.transaction_id", "p.description")
	if qf.StudentID != 0 {
		f.add("p.student_id = ?", qf.StudentID)
	}
	if qf.Status != "" {
		f.add("p.status = ?", qf.Status)
	}

	payments := make([]payment.Payment, 0)
	q := f.selectQuery(paymentSelect, core.OrderBy(qf.Ordering, paymentOrdering, "p.payment_date DESC, p.payment_id DESC"))
	if err := repo.db.SelectContext(ctx, &payments, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying payments")
	}
	return payments, nil
}

func (repo *paymentRepository) Update(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE payments
		SET student_id = $1, amount = $2, payment_date = $3, payment_method = $4, transaction_id = $5,
			description = $6, status = $7
		WHERE payment_id = $8`,
		pmt.StudentID, pmt.Amount, pmt.PaymentDate, pmt.PaymentMethod, pmt.TransactionID, pmt.Description,
		pmt.Status, pmt.ID,
	)
	if err != nil {
		return payment.Payment{}, database.TranslateError(err, "updating payment", repo.mapping())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, core.NewNotFoundError("payment")
	}
	return repo.Get(ctx, pmt.ID)
}

func (repo *paymentRepository) Delete(ctx context.Context, id int64) (payment.Payment, error) {
	pmt, err := repo.Get(ctx, id)
	if err != nil {
		return payment.Payment{}, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM payments WHERE payment_id = $1`, id)
	if err != nil {
		return payment.Payment{}, database.TranslateError(err, "deleting payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, core.NewNotFoundError("payment")
	}
	return pmt, nil
}
