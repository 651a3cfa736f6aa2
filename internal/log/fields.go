package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldSuccess     = "success"
	FieldMonth       = "month"
	FieldYear        = "year"
	FieldTemplateID  = "template_id"
	FieldEntryID     = "entry_id"
	FieldTitle       = "title"
	FieldFrequency   = "frequency"
	FieldAmountCents = "amount_cents"
	FieldIsIncome    = "is_income"
	FieldIsPaid      = "is_paid"
	FieldDueDate     = "due_date"
	FieldBalance     = "balance_cents"
	FieldEntryCount  = "entry_count"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentStorage      = "storage"
	ComponentMaterializer = "materializer"
	ComponentBalance      = "balance"
	ComponentLedger       = "ledger"
	ComponentAMQP         = "amqp"
	ComponentSheets       = "sheets"
	ComponentWorker       = "worker"
)

// Operations defines standard operation names
const (
	OpCreate       = "create"
	OpRead         = "read"
	OpUpdate       = "update"
	OpDelete       = "delete"
	OpList         = "list"
	OpMaterialize  = "materialize"
	OpRecalculate  = "recalculate"
	OpInvalidate   = "invalidate"
	OpExport       = "export"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)
