// Package api assembles the gateway's HTTP surface: the REST API under
// /api/v1 (API keys), the MCP endpoint at /mcp (MCP tokens), and the
// credential administration routes under /internal (admin token).
package api
