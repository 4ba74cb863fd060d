// Package domain translates MCP tool, resource, and prompt invocations into
// calls against the service façades.
//
// The package is intentionally explicit about that mapping:
// - parse tool input or resource URI into service-scoped queries,
// - route calls to the injected façade interfaces,
// - and surface structured outputs that MCP clients can render.
//
// Handlers never let a façade failure escape as a protocol fault: failures
// come back as error-carrying tool results or {"error": ...} resource
// payloads so one bad invocation cannot take down the serving loop.
package domain
