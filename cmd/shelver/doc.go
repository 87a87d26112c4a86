// Command shelver is the operator CLI: inspect records, retry stuck files,
// manage configuration, and run the engine in the foreground.
package main
