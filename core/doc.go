// Package core defines the shared domain types of turnguard: conversation
// turns, moderation verdicts, analysis findings, action decisions, the
// per-turn working record and the ContextStore persistence contract.
//
// The types form a closed vocabulary: verdict categories, finding sources and
// action types are integer enums rather than open-ended strings so that
// switches over them stay exhaustiveness-checkable. Nothing in this package
// talks to a model or a store; it is imported by every other package and
// imports none of them.
package core
