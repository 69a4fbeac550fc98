// Package events provides the in-process event router that hands work
// between pipeline stages. Delivery is at-least-once: each subscriber gets
// its own buffered queue and failed handler invocations are redelivered a
// bounded number of times before the event is dropped and logged.
package events
