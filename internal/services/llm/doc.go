// Package llm provides an OpenAI-compatible chat completions client shared
// by the idea and script generation adapters.
//
// The client issues single JSON-mode requests and classifies HTTP failures
// into the retry taxonomy in the services package. It does not retry on its
// own; the step executor owns the retry budget so a request is never retried
// twice at two layers.
//
// # Entry Points
//
// NewClient: construct client from Config with a stage tag for errors.
// Client.CompleteJSON: send system/user prompts, receive the JSON payload.
// Client.HealthCheck: verify API key and model availability.
// DecodeJSON: unmarshal model output, tolerating markdown code fences.
package llm
