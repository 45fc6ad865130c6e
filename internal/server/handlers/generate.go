// Package handlers provides HTTP request handlers for the Interera API.
//
// Handlers are organized by domain for maintainability:
//
//   - interera.go: Furnish, inpaint, history, and style endpoints
//   - models.go: Gemini model catalog listing and retrieval
//   - stats.go: Administrative operations (stats, prune)
//   - health.go: Health and readiness checks
//   - realtime.go: WebSocket and SSE generation event streams
//   - openapi.go: OpenAPI 3.1 specification endpoints
//
// All handlers follow a consistent pattern:
//
//  1. Validate input
//  2. Check cache (if applicable)
//  3. Call the studio or upstream client
//  4. Transform data
//  5. Cache result (if applicable)
//  6. Return response
//
// Handlers use dependency injection for testability and receive all
// dependencies through the Handlers struct.
package handlers

//go:generate gomarkdoc --output README.md .
