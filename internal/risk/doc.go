// Package risk maps a fraud probability to a discrete display tier.
//
// Classify is a pure function with no side effects, so it can be used by
// the controller, the renderer, local history and tests alike. The tier
// table is evaluated in order:
//
//  1. gibberish input              -> LanguageError
//  2. probability <= 30            -> Clean
//  3. probability <= 60            -> Moderate
//  4. probability <  HighCeiling   -> High
//  5. otherwise                    -> Critical
package risk
