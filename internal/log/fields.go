package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldUserID      = "user_id"
	FieldUsername    = "username"
	FieldTxID        = "transaction_id"
	FieldDebtID      = "debt_id"
	FieldType        = "type"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldPaidAmount  = "paid_amount"
	FieldRepaid      = "is_repaid"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldPath        = "path"
	FieldBackupFile  = "backup_file"
	FieldEventKind   = "event_kind"
	FieldDurationMs  = "duration_ms"
	FieldCommand     = "command"
	FieldRetention   = "retention"
	FieldDeleteCount = "deleted"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentLedger    = "ledger"
	ComponentAggregate = "aggregation"
	ComponentDebt      = "debt"
	ComponentPortfolio = "portfolio"
	ComponentUsers     = "users"
	ComponentStorage   = "storage"
	ComponentBackup    = "backup"
	ComponentAMQP      = "amqp"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpRepay    = "repay"
	OpPayEMI   = "pay_emi"
	OpUndo     = "undo_repayment"
	OpBackup   = "backup"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithUser adds the acting user
func (f LogFields) WithUser(id int64, username string) LogFields {
	f[FieldUserID] = id
	if username != "" {
		f[FieldUsername] = username
	}
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRepayment adds debt repayment fields
func (f LogFields) WithRepayment(debtID int64, amount, paid float64, repaid bool) LogFields {
	f[FieldDebtID] = debtID
	f[FieldAmount] = amount
	f[FieldPaidAmount] = paid
	f[FieldRepaid] = repaid
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
