// Package dedup decides whether an incoming alert duplicates an
// already-tracked one.
//
// # Overview
//
// Alert storms routinely deliver the same failure dozens of times under
// slightly different payloads. The detector compares each normalized
// alert against recent open tracking records and reports the ones it
// plausibly duplicates, so the orchestrator can comment on the existing
// record instead of filing a new one.
//
// Similarity is deliberately a cheap, deterministic, explainable
// lexical measure (Jaccard over normalized token sets, see the
// similarity package) rather than an ML model. The trade is explicit:
// no training data, no drift, no inference cost, and every score can be
// reproduced by hand from the two strings.
//
// # Composite scoring
//
// A single Jaccard score over concatenated text would let long noisy
// descriptions swamp the signal, so the detector blends per-field
// scores:
//
//   - title vs title, weight 0.5: always contributes
//   - stack trace vs the candidate body's fenced code block, weight
//     0.3, with description vs body dropping to 0.2: only when the
//     alert has a trace and the candidate body has a fenced block
//   - description vs body, weight 0.5: when there is no trace signal
//
// Both branches sum to 1.0. Matching stack traces are the single
// strongest duplicate signal available; titles are medium-strength;
// free text is the weakest.
//
// # The two checks
//
// IsAlertProcessed is a verbatim-containment scan of the alert's
// source-native identifier over the same candidate pool: a cheap
// idempotency short-circuit for redelivered webhooks. FindDuplicates is
// the fuzzy path for distinct deliveries of the same underlying
// incident. Run the exact check first.
//
// # Ports
//
// Candidate retrieval is injected as the IssueLister capability, so the
// detector stays pure and testable without a live store. It performs
// exactly one listing call per invocation, imposes no deadline of its
// own, and never retries; cancellation and store-level resilience
// belong to the caller and the store client respectively.
package dedup
