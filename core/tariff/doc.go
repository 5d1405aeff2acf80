// Package tariff resolves the pricing of a charger, either from an explicit
// provider name or by inferring the provider from the free-text operator and
// site names reported by a charger directory.
//
// Inference is an ordered list of substring rules evaluated first-match-wins
// on the lower-cased text. A charger that matches no rule, or whose provider
// is not in the caller's allow-list, has no tariff and must not be costed.
package tariff
