package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldExpenseID   = "expense_id"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldDate        = "date"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentMCP     = "mcp"
	ComponentStorage = "storage"
	ComponentCatalog = "catalog"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpAdd       = "add"
	OpList      = "list"
	OpSummarize = "summarize"
	OpValidate  = "validate"
	OpExport    = "export"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
