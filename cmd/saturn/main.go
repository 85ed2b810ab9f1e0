// Mercator Saturn is a deterministic transaction-screening engine for
// payment networks.
//
// It evaluates declarative screening rules against transactions, resolves
// conflicting rule outcomes by severity and priority, and adjusts amount
// limits by the observed state of the network.
//
// Usage:
//
//	# Start the server with default configuration
//	saturn run
//
//	# Start with a custom configuration file
//	saturn run --config /path/to/config.yaml
//
//	# Validate rule files without starting the server
//	saturn validate --file rules.yaml
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
