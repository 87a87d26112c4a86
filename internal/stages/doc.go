// Package stages implements the handlers for every pipeline action, from
// inbox validation through classification to the terminal completed marker.
package stages
