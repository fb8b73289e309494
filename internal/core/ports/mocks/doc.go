// Package mocks provides test doubles for ports interfaces.
//
// These mocks are designed to be simple, thread-safe, in-memory implementations
// suitable for unit testing. Each mock provides:
//
//   - Default behavior that returns reasonable test values
//   - Callback functions (xxxFn) for customizing behavior per test
//   - Call recording for asserting what the code under test sent
//
// # Available Mocks
//
//   - Analyzer: implements ports.Analyzer
//   - SlotStore: implements ports.SlotStore
package mocks
