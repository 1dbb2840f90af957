// Package reconcile implements the decision core of catalog-sync: matching
// remote records to local rows and applying the minimal set of writes.
//
// A cycle runs two ordered passes. The product pass overwrites quantity and
// price of matching oc_product rows. The offer pass then writes the parent
// product's price (offers are authoritative for price) and the option row's
// quantity. Ordering matters: the offer pass may overwrite a price the
// product pass just set.
//
// The per-cycle seen set caps price writes at one per parent product per
// cycle. It is threaded through SyncOffers as an explicit argument so
// repeated cycles can never share state accidentally.
package reconcile
