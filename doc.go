// Package authflow implements email-based one-time-code authentication for
// the Safe Haven app.
//
// The flow is the following:
//
//  1. A visitor registers with a username, email and password. The account is
//     not durable yet; it is parked as a pending verification.
//  2. The visitor logs in with the same email and password. A six digit entry
//     code is generated and emailed through the mail relay.
//  3. The visitor submits the code to Flow.VerifyCode(). On a match the
//     registration is finalized, credentials are persisted, and a session is
//     opened.
//  4. Existing users skip step 1: Flow.Login() checks the credential store
//     and emails a fresh login code.
//  5. Flow.Signout() closes the session. Any pending verification is left
//     untouched.
//
// At most one verification is in flight per store. Starting a new register or
// login attempt overwrites the previous one.
//
// State is persisted through a SlotStore; the bun/SQLite implementation in
// this package is the durable default, and the in-memory implementation backs
// tests.
package authflow
