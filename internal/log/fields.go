package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldDomain     = "domain"
	FieldAgentID    = "agent_id"
	FieldCapability = "capability"
	FieldStorageKey = "storage_key"
	FieldRevision   = "revision"
	FieldEntryCount = "entry_count"
	FieldMessageID  = "message_id"
	FieldSheetsRef  = "sheets_ref"
	FieldSampleMode = "sample_mode"
)

// Components
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentSession = "session"
	ComponentAgent   = "agent"
	ComponentStorage = "storage"
	ComponentCache   = "cache"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Operations
const (
	OpLoad     = "load"
	OpPersist  = "persist"
	OpInsight  = "insight"
	OpLogEntry = "log_entry"
	OpQuery    = "query"
	OpChat     = "chat"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpAppend   = "append"
	OpRender   = "render"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
	OpValidate = "validate"
)

// Error categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeTransport     = "transport_error"
	ErrorTypeParse         = "parse_error"
	ErrorTypeBusy          = "busy_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields builds a set of structured fields.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithDomain(domain string) LogFields {
	f[FieldDomain] = domain
	return f
}

// WithAgent records which capability and agent id a call went to.
func (f LogFields) WithAgent(capability, agentID string) LogFields {
	f[FieldCapability] = capability
	f[FieldAgentID] = agentID
	return f
}

func (f LogFields) WithStorageKey(key string) LogFields {
	f[FieldStorageKey] = key
	return f
}

func (f LogFields) WithDuration(ms int64) LogFields {
	f[FieldDuration] = ms
	return f
}

// ToSlice flattens the fields into slog's key/value form.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
