// Package mock provides deterministic ai implementations for testing.
package mock
