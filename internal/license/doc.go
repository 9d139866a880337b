// Package license implements the offline access-code verification
// subsystem for MAAS-PlanComplexity. It decides, without any network
// call, whether a given product version has been authorized on this
// machine, derives and checks the short human-enterable access code from
// the shared secret, persists acceptance decisions across runs, and gates
// execution by the build-expiration policy.
//
// # Components
//
//   - Code derivation: deterministic mapping from (name, version, secret)
//     to an 8-character access code (code.go)
//   - Acceptance store: schema-versioned JSON mapping of configuration
//     keys to accepted codes, with legacy-format migration and a flat
//     fallback file (store.go)
//   - Compatibility resolver: decides whether an acceptance recorded for
//     an earlier release still covers the current one (compat.go)
//   - Expiration gate: pure decision over the build expiry date and the
//     override marker (expiry.go)
//   - Verifier: orchestrates check, prompt, verify and persist (verifier.go)
//
// # Verification flow
//
//	store, _ := license.Open(paths.StoreFile, paths.FallbackFile)
//	v := license.NewVerifier(identity, secret, license.FormatShort, store, prompter)
//	outcome, err := v.EnsureAccepted(ctx)
//
// The flow suspends at the prompt awaiting a synchronous user response;
// cancellation rejects the workflow, an invalid code re-prompts. On the
// first valid code the store is saved write-through; if the structured
// save fails, a flat key=code fallback record keeps the acceptance for
// the next run.
//
// # Threat model
//
// The subsystem produces friction, not proof of entitlement. The shared
// secret ships inside the binary and the 8-hex-character code trades
// collision resistance for typeability. No online activation, no
// revocation, no per-record expiry.
package license
