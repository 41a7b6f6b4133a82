package main

// DiagnosticsSink receives unexpected failures for later inspection. Expected
// user-driven outcomes (cancellation, abort, not-found) never reach it.
type DiagnosticsSink interface {
	Report(err error, kind RequestKind, origin string)
}

// logDiagnostics forwards reportable failures to the structured logger.
type logDiagnostics struct {
	lg Logger
}

func NewLogDiagnostics(lg Logger) DiagnosticsSink {
	return &logDiagnostics{lg: lg.NewSystem("diagnostics")}
}

func (d *logDiagnostics) Report(err error, kind RequestKind, origin string) {
	if err == nil || !shouldReportToDiagnostics(err) {
		return
	}
	d.lg.Error("request failed", "error", err, "kind", kind, "origin", origin)
}
