// Package vault provides the encrypted slot vault and the generic encrypted
// store built on it.
//
// A Vault binds a bbolt database of named slots to a password session. Each
// slot holds one self-describing encrypted blob (see internal/crypto). A
// well-known check slot lets the password be verified without touching real
// data.
//
// Store[T] is the reactive-value binding: open decrypts and decodes the slot
// (falling back to a default on failure instead of crashing), and every
// Update commits the mutated value back through exactly one
// encode+encrypt+write. A failed write-back never rolls back the in-memory
// value.
//
// ChangePassword re-encrypts every slot under a new password. Setting a new
// session password alone never migrates existing blobs.
package vault
