// Package auth is the account and access-control kernel: account
// lifecycle, credential verification with lockout, role to authority
// resolution, and the error taxonomy every failure is reduced to.
//
// Accounts:
//   - Account records are persisted via Bun and carry independent
//     lifecycle flags (active, locked, expired, credentials expired).
//     The role and its derived authority set are stored together and
//     only ever mutated through AssignRole, so they cannot diverge.
//   - AccountService owns creation, whole-record update, removal, and
//     credential changes. Identity uniqueness is checked username
//     before email, and the store's unique constraints remain the
//     backstop for races.
//
// Authentication:
//   - Authenticator combines the LoginAttemptGuard (an in-memory,
//     fixed-window failure counter) with the account's durable lock
//     flag. Reaching the threshold persists the lock; disabled status
//     is only reported after the credential verified.
//   - Successful logins yield a Principal snapshot. TokenService mints
//     it into a signed JWT and recovers it on validation.
//
// Failures:
//   - Every failure the kernel raises is a structured error with a
//     category and a stable text code. MapError reduces any of them to
//     the DomainResponse envelope with its mapped HTTP status and a
//     client-facing title; unclassified errors become server faults
//     without losing their detail.
package auth
