package logger

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldManager   = "manager"
	FieldMode      = "mode"
	FieldPath      = "path"
	FieldSource    = "source"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldPhase     = "phase"
	FieldRequestID = "request_id"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("merged", logger.Fields("source", name, "keys", n))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(component string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldComponent: component,
		FieldError:     err.Error(),
	}
}
