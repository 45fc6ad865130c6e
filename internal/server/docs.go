// Package server provides the HTTP server implementation for the Interera API.
//
// This file contains general API documentation annotations for Swag/OpenAPI generation.
// These annotations describe the overall API (title, version, security, etc.)
// while individual endpoint annotations live in the handler files.
package server

// @title Interera API
// @version 1.0
// @description REST API for AI interior design image generation with real-time updates via WebSocket and SSE.
// @description
// @description Features:
// @description - Furnishing of empty rooms in a selectable style
// @description - Masked inpainting with optional instructions
// @description - Per-session generation history via cookie identity
// @description - Gemini model catalog with filtering and pagination
// @description - Real-time generation events via WebSocket and Server-Sent Events
// @description - In-memory caching, rate limiting, and authentication support
//
// @contact.name Interera Project
// @contact.url https://github.com/interera/interera
//
// @license.name MIT
// @license.url https://github.com/interera/interera/blob/master/LICENSE
//
// @host localhost:8000
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for authentication (optional, configurable)
