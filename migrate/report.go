package migrate

import (
	"fmt"

	"github.com/alecthomas/repr"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ora2pg/plsqlcore/metadata"
)

// Report is the structured result of one migration run (spec §7:
// "errors at routine granularity do not abort the migration"). Every
// routine that TransformRoutine failed to load from the store, parse,
// or transform gets its own entry in RoutineErrors (SegmentAndStore
// returns its errors to the caller and does not record them here);
// Warnings collects non-fatal findings
// (unresolved references, unsupported-but-tolerated constructs)
// regardless of which routine produced them.
type Report struct {
	RunID         uuid.UUID
	Schema        string
	Warnings      []error
	RoutineErrors map[string]error
	Emitted       []string // qualified names successfully transformed, in the order Succeed was called

	log *logrus.Entry
}

// NewReport starts a Report for schema, stamping a fresh RunID and a
// logrus.Entry carrying run_id/schema fields on every line it logs
// (SPEC_FULL.md §1 ambient logging item: "one *logrus.Entry per
// migration run, fields run_id, schema, routine").
func NewReport(schema string) *Report {
	id := uuid.New()
	return &Report{
		RunID:         id,
		Schema:        schema,
		RoutineErrors: make(map[string]error),
		log: logrus.WithFields(logrus.Fields{
			"run_id": id.String(),
			"schema": schema,
		}),
	}
}

// Warn appends a non-fatal finding and logs it at warn level.
func (r *Report) Warn(err error) {
	r.Warnings = append(r.Warnings, err)
	r.log.WithError(err).Warn("transform warning")
}

// Fail records routine as having failed with err (spec §7: fatal for
// that routine only) and logs it at error level.
func (r *Report) Fail(routine metadata.QualifiedName, err error) {
	r.RoutineErrors[routine.String()] = err
	r.log.WithFields(logrus.Fields{"routine": routine.String()}).WithError(err).Error("routine transform failed")
}

// Succeed records routine as successfully emitted, in call order,
// and logs it at info level.
func (r *Report) Succeed(routine metadata.QualifiedName) {
	r.Emitted = append(r.Emitted, routine.String())
	r.log.WithFields(logrus.Fields{"routine": routine.String()}).Info("routine transformed")
}

// Summary renders a one-line human-readable tally, the shape a host
// CLI (out of scope here) would print after a run.
func (r *Report) Summary() string {
	return fmt.Sprintf("run %s: %d emitted, %d failed, %d warnings",
		r.RunID, len(r.Emitted), len(r.RoutineErrors), len(r.Warnings))
}

// Trace logs a debug-level structured dump of v (a parsed RoutineSig,
// a metadata.Index fragment, anything worth a human-readable struct
// dump during verbose tracing), rendered with repr.String the way
// vippsas/sqlcode's querydump.go renders query arguments for test
// diagnostics. Only evaluated when debug logging is enabled, so a
// quiet run never pays for the reflection walk.
func (r *Report) Trace(label string, v interface{}) {
	if !r.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	r.log.WithField("label", label).Debug(repr.String(v, repr.Indent("  ")))
}
