// Package process provides the concrete process kinds hosted by constraints,
// Automation and Scenario, together with their factories.
package process
