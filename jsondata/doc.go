// Package jsondata provides the default JSON decoding hook and a
// map-backed Object type whose key lookups transparently promote
// extended tweet fields.
//
// Lookups on an Object follow a fixed precedence: a "text" lookup
// prefers the "full_text" field when present, and any key missing at
// the top level is resolved against the nested "extended_tweet"
// object before being reported absent. This means callers never have
// to check whether a payload was truncated.
//
// Numbers are decoded as json.Number so that 64-bit snowflake IDs
// survive decoding without float rounding.
package jsondata
