// Package doctor provides health checks for an authgraph authorization
// store, grounded on melange's internal/doctor package: the same
// Status/CheckResult/Report shape and Print layout, re-pointed from
// schema-file/generated-function checks at this domain's structural
// invariants (spec §4, "Invariants").
//
// Example usage:
//
//	d := doctor.New(store, mig) // mig may be nil for non-Postgres stores
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ashgrove/authgraph"
	"github.com/ashgrove/authgraph/graph"
	"github.com/ashgrove/authgraph/graph/postgres"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "schema", "invariants").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor performs health checks against an authgraph Store. mig is
// optional: when non-nil (a PostgreSQL-backed Store), schema migration
// state is checked too.
type Doctor struct {
	store graph.Store
	mig   *postgres.Migrator
}

// New creates a Doctor over store. Pass a non-nil mig when store is backed
// by graph/postgres to additionally check migration state.
func New(store graph.Store, mig *postgres.Migrator) *Doctor {
	return &Doctor{store: store, mig: mig}
}

// Run executes all health checks and returns a report.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if d.mig != nil {
		if err := d.checkMigrationState(ctx, report); err != nil {
			return nil, fmt.Errorf("checking migration state: %w", err)
		}
	}
	if err := d.checkGlobalGroup(ctx, report); err != nil {
		return nil, fmt.Errorf("checking global group invariant: %w", err)
	}
	if err := d.checkAutoMembership(ctx, report); err != nil {
		return nil, fmt.Errorf("checking auto-membership consistency: %w", err)
	}
	if err := d.checkAcyclicity(ctx, report); err != nil {
		return nil, fmt.Errorf("checking acyclicity: %w", err)
	}
	if err := d.checkPolarityExclusivity(ctx, report); err != nil {
		return nil, fmt.Errorf("checking polarity exclusivity: %w", err)
	}

	return report, nil
}

// checkMigrationState validates the PostgreSQL schema has been applied and
// matches the embedded checksum.
func (d *Doctor) checkMigrationState(ctx context.Context, report *Report) error {
	last, ok, err := d.mig.LastMigration(ctx)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "schema",
			Name:     "migration_state",
			Status:   StatusFail,
			Message:  "could not read migration state",
			Details:  err.Error(),
			FixHint:  "check database connectivity",
		})
		return nil
	}
	if !ok {
		report.AddCheck(CheckResult{
			Category: "schema",
			Name:     "migration_state",
			Status:   StatusFail,
			Message:  "schema not migrated",
			FixHint:  "run `authgraph migrate`",
		})
		return nil
	}

	want := postgres.SchemaChecksum()
	if last != want {
		report.AddCheck(CheckResult{
			Category: "schema",
			Name:     "migration_state",
			Status:   StatusWarn,
			Message:  "applied schema checksum differs from the embedded schema",
			Details:  fmt.Sprintf("applied: %s\nembedded: %s", last, want),
			FixHint:  "run `authgraph migrate` to apply the current schema",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: "schema",
		Name:     "migration_state",
		Status:   StatusPass,
		Message:  "schema is up to date",
	})
	return nil
}

// checkGlobalGroup checks that exactly one Group has is_global=true.
// Invariant I1 allows at most one; this check also fails when none is
// elected.
func (d *Doctor) checkGlobalGroup(ctx context.Context, report *Report) error {
	globals, err := d.store.FindAll(ctx, graph.NodeFilter{
		Label: authgraph.LabelGroup,
		Props: graph.Props{"is_global": true},
	})
	if err != nil {
		return err
	}

	switch len(globals) {
	case 1:
		report.AddCheck(CheckResult{
			Category: "invariants",
			Name:     "global_group",
			Status:   StatusPass,
			Message:  fmt.Sprintf("exactly one global group (%s)", globals[0].ID),
		})
	case 0:
		report.AddCheck(CheckResult{
			Category: "invariants",
			Name:     "global_group",
			Status:   StatusFail,
			Message:  "no global group is elected",
			FixHint:  "call Catalog.EnsureGlobalGroup or Group.MakeGlobal",
		})
	default:
		var ids []string
		for _, g := range globals {
			ids = append(ids, string(g.ID))
		}
		report.AddCheck(CheckResult{
			Category: "invariants",
			Name:     "global_group",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%d groups are marked global, expected exactly one", len(globals)),
			Details:  strings.Join(ids, ", "),
			FixHint:  "demote all but one group with Group.MakeOptional",
		})
	}
	return nil
}

// checkAutoMembership validates that every Entity carries exactly one
// IS_IN_AUTO edge, pointing at the current global group (spec §4.4).
func (d *Doctor) checkAutoMembership(ctx context.Context, report *Report) error {
	globals, err := d.store.FindAll(ctx, graph.NodeFilter{
		Label: authgraph.LabelGroup,
		Props: graph.Props{"is_global": true},
	})
	if err != nil {
		return err
	}
	if len(globals) != 1 {
		report.AddCheck(CheckResult{
			Category: "invariants",
			Name:     "auto_membership",
			Status:   StatusWarn,
			Message:  "skipped: global group invariant is not satisfied",
		})
		return nil
	}
	global := globals[0].ID

	entities, err := d.store.FindAll(ctx, graph.NodeFilter{Label: authgraph.LabelEntity})
	if err != nil {
		return err
	}

	var missing, extra, misrouted int
	for _, e := range entities {
		nbrs, err := d.store.Neighbors(ctx, e.ID, []graph.EdgeType{authgraph.EdgeIsInAuto}, graph.Out, nil)
		if err != nil {
			return err
		}
		switch len(nbrs) {
		case 0:
			missing++
		case 1:
			if nbrs[0].Node.ID != global {
				misrouted++
			}
		default:
			extra++
		}
	}

	if missing == 0 && extra == 0 && misrouted == 0 {
		report.AddCheck(CheckResult{
			Category: "invariants",
			Name:     "auto_membership",
			Status:   StatusPass,
			Message:  fmt.Sprintf("%d entities have consistent auto-membership", len(entities)),
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: "invariants",
		Name:     "auto_membership",
		Status:   StatusFail,
		Message:  "auto-membership is inconsistent with the global group",
		Details:  fmt.Sprintf("missing: %d, duplicate: %d, stale: %d", missing, extra, misrouted),
		FixHint:  "re-run reindexing (Entity.Save or Group.MakeGlobal on the current global group)",
	})
	return nil
}

// checkAcyclicity validates invariant I2: SUBSET_OF and INHERITS chains
// terminate (spec §4, "Invariants").
func (d *Doctor) checkAcyclicity(ctx context.Context, report *Report) error {
	var cyclic []graph.NodeID

	scopes, err := d.store.FindAll(ctx, graph.NodeFilter{Label: authgraph.LabelScope})
	if err != nil {
		return err
	}
	for _, s := range scopes {
		if _, err := graph.Ancestors(ctx, d.store, s.ID, authgraph.EdgeSubsetOf, 64); err != nil {
			cyclic = append(cyclic, s.ID)
		}
	}

	groups, err := d.store.FindAll(ctx, graph.NodeFilter{Label: authgraph.LabelGroup})
	if err != nil {
		return err
	}
	for _, g := range groups {
		if _, err := graph.Ancestors(ctx, d.store, g.ID, authgraph.EdgeInherits, 64); err != nil {
			cyclic = append(cyclic, g.ID)
		}
	}

	if len(cyclic) == 0 {
		report.AddCheck(CheckResult{
			Category: "invariants",
			Name:     "acyclicity",
			Status:   StatusPass,
			Message:  "no SUBSET_OF/INHERITS cycles detected",
		})
		return nil
	}

	var ids []string
	for _, id := range cyclic {
		ids = append(ids, string(id))
	}
	report.AddCheck(CheckResult{
		Category: "invariants",
		Name:     "acyclicity",
		Status:   StatusFail,
		Message:  fmt.Sprintf("%d nodes are part of a SUBSET_OF/INHERITS cycle", len(cyclic)),
		Details:  strings.Join(ids, ", "),
		FixHint:  "break the cycle by clearing one SetSubsetOf/SetInherits link",
	})
	return nil
}

// checkPolarityExclusivity validates invariant I3: no (subject, perm,
// scope_id) carries both an ALLOW and a DENY edge (spec §4.5). Duplicate
// edges of the same polarity are not reported.
func (d *Doctor) checkPolarityExclusivity(ctx context.Context, report *Report) error {
	perms, err := d.store.FindAll(ctx, graph.NodeFilter{Label: authgraph.LabelPerm})
	if err != nil {
		return err
	}

	type key struct {
		subject graph.NodeID
		scope   string
	}

	var conflicts []string
	for _, p := range perms {
		edges, err := d.store.Neighbors(ctx, p.ID, []graph.EdgeType{authgraph.EdgeAllow, authgraph.EdgeDeny}, graph.In, nil)
		if err != nil {
			return err
		}

		seen := make(map[key]graph.EdgeType)
		for _, nb := range edges {
			scopeID, _ := nb.Edge.Props["scope_id"].(string)
			k := key{subject: nb.Edge.From, scope: scopeID}
			if prior, ok := seen[k]; ok && prior != nb.Edge.Type {
				conflicts = append(conflicts, fmt.Sprintf("perm=%s subject=%s scope=%s", p.ID, nb.Edge.From, scopeID))
			}
			seen[k] = nb.Edge.Type
		}
	}

	if len(conflicts) == 0 {
		report.AddCheck(CheckResult{
			Category: "invariants",
			Name:     "polarity_exclusivity",
			Status:   StatusPass,
			Message:  "no conflicting ALLOW/DENY edges found",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: "invariants",
		Name:     "polarity_exclusivity",
		Status:   StatusFail,
		Message:  fmt.Sprintf("%d (subject, perm, scope) tuples carry both ALLOW and DENY", len(conflicts)),
		Details:  strings.Join(conflicts, "\n"),
		FixHint:  "call ResetPerm before re-linking with the opposite polarity",
	})
	return nil
}
