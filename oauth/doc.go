// Package oauth generates Authorization headers for API requests.
//
// Two signer implementations are provided: OAuth1 (user context,
// HMAC-SHA1 request signing) and Bearer (application-only). A Signer
// is invoked once per physical request attempt, since OAuth1
// signatures embed a timestamp and nonce.
package oauth
