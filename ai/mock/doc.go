// Package mock provides test doubles for the ai interfaces. Default
// behavior is deterministic so tests can assert on exact vectors; custom
// behavior is injected via function fields.
package mock
