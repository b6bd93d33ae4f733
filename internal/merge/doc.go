// Package merge reconciles the local and the remote copy of the synchronized
// collections.
//
// Every collection is registered once in a [Registry] together with the
// [Kind] of merge it needs. [Resolver.Merge] walks the registry in a fixed
// order: tombstones are unioned first, then dangling folder references are
// cleared, then entity maps, flat sets, keyed objects and scalars are merged.
//
// Merge is pure. It never touches the store; the caller persists the result
// in one transaction.
package merge
