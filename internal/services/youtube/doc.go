// Package youtube fetches video transcripts for notes that reference a
// YouTube link and locates video IDs inside note content.
package youtube
