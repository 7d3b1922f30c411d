// Package server implements an MCP (Model Context Protocol) server exposing
// pixel buffer tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - pixel_info: Decode an image file and report its buffer layout and the
//     array shape it exports to under a conversion preset
//   - pixel_sample: Read the value stored at (x, y, z, c)
//   - pixel_run: Run an engine command over a list of image files and write
//     the resulting list to an output directory
//
// # Image Caching
//
// Decoded buffers are cached by path for the lifetime of the server. Every
// tool call works on a private copy, so pixel_run never alters the cache.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which carries the failure kind
//     ("shape mismatch", "engine failure", ...)
//
// # Usage
//
//	srv := server.New(server.WithOutputDir("/tmp/out"))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
