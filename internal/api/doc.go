// Package api serves the JSON HTTP surface of the analyzer: validation
// endpoints, scan and search operations, history, and cache statistics.
//
// # Design
//
// The middleware stack, outermost first, is Recovery → RequestID →
// Logging → Tracing → CORS → RateLimit → Routes. RequestID runs before
// Logging so the request_id attribute is available in log lines; CORS
// runs before RateLimit so preflight OPTIONS requests get proper
// headers even when a client is throttled.
//
// # Verdict semantics
//
// The validate endpoints return HTTP 200 for both allowed and denied
// inputs: the verdict is the payload, not a transport failure. 4xx and
// 5xx are reserved for malformed requests and internal errors.
package api
