// Package notifications pushes pipeline outcomes to an ntfy topic. The
// engine never depends on delivery; every send is fire-and-forget.
package notifications
