// Package endpoint provides an immutable, chainable descriptor of API
// endpoints.
//
// An Endpoint accumulates URL path segments together with the API
// family (subdomain), version, suffix, and base URL template. Every
// Child or With call returns a new value; descriptors built from a
// shared root never interfere with each other. The URL is only
// resolved when a request is actually made.
//
//	api := endpoint.New("api")
//	verify := api.Child("account").Child("verify_credentials")
//	// https://api.twitter.com/1.1/account/verify_credentials.json
//
// Alternate API families are addressed through overrides on the
// resulting subtree:
//
//	ads := api.With(endpoint.Family("ads-api"), endpoint.Version("11"))
package endpoint
