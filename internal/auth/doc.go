// Package auth provides authentication for medbox-core.
//
// It implements a two-tier role model (user → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens (HS256, signature-only validation)
//
// Accounts belong to caregivers and administrators of the dispenser
// fleet; devices themselves authenticate at the broker, not here.
package auth
