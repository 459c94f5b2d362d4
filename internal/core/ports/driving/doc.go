// Package driving holds the ports the CLI, REST API, MCP server and
// directory watcher call into. internal/core/services implements them.
package driving
