// Package remote retrieves product and offer collections from the catalog
// API. Collections are fetched page by page (limit/page query parameters)
// and fully materialized before reconciliation starts.
//
// A failed fetch yields a *FetchError for the whole collection rather than
// a partial record list, so the engine can skip that collection for the
// cycle instead of reconciling against records it never saw.
package remote
