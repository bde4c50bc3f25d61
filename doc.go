// Package riskfolio turns a personal financial profile into an investment
// risk score and a mutual-fund allocation.
//
// The core functionalities include:
//   - Risk Scoring: a stateless, total function that maps a user Profile to a
//     RiskScore in [1, 10] from four weighted sub-scores (demographic,
//     financial, investment profile, behavioral).
//   - Tiering: the score is bucketed into one of five named investment
//     profiles, from Conservative to Very Aggressive.
//   - Allocation: an Allocator asks an AllocationSuggester (typically a
//     generative text model) to split an investable amount across small, mid
//     and large cap funds, then validates the answer. Failures never escape as
//     errors, they are reported as an Allocation carrying an Error message.
//   - Fund Recommendation: a FundCatalog provides ranked funds per category,
//     one fund is picked per lakh allocated to the category.
//
// This package holds no state and performs no I/O by itself, storage, HTTP and
// the generative model live in the store, server and gemini packages.
package riskfolio
