/*
Package observability exposes the runtime's prometheus collectors.

Collectors are registered on the default registry at init time; embedders
expose them by mounting promhttp (or scraping the default gatherer) in their
transport layer.
*/
package observability
