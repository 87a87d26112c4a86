// Package vault is the engine's boundary to the file storage hosting the
// notes vault.
//
// Storage is the collaborator contract the pipeline calls into; FS is the
// local-filesystem implementation. Tests substitute fakes to exercise
// pipeline semantics without touching disk layout details.
package vault
