// Package transcribe sends audio files to a Whisper-compatible
// transcription endpoint and returns the recognized text.
package transcribe
