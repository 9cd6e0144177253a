// Package order models the purchased order as this service sees it: a header with the
// recipient address and a list of lines. Orders are ingested upstream and are read-only
// here apart from the packed/dispatched timestamps.
package order
