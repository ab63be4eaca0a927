// Command authgraph manages an authgraph authorization store: applying its
// PostgreSQL schema, loading YAML fixtures, checking resolution decisions,
// and running health checks against the invariants in spec §4.
package main

func main() {
	Execute()
}
