// Package auth implements the authentication and authorization core of
// tasknest: bcrypt password hashing, HS256 bearer-token issuance and
// verification, request-scoped identity propagation, and the register,
// login, and change-password use cases.
//
// Tokens are signed with a single symmetric secret loaded at startup. There
// is no server-side session state: validity is purely a function of the
// signature and the embedded timestamps.
package auth
