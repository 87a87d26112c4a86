// Package llm wraps the OpenAI-compatible chat-completions endpoint used for
// inbox classification and image text extraction.
//
// Requests run in JSON mode with temperature 0; transient HTTP failures
// (429, 5xx, timeouts) retry with exponential backoff honoring Retry-After.
// Responses tolerate common provider quirks: code fences around the JSON
// payload and streaming-schema choices returned for non-streaming calls.
package llm
