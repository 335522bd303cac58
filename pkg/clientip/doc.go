// Package clientip extracts the real client IP address from HTTP requests,
// looking through common proxy headers before falling back to the socket
// address. Used by webhook ingestion to attribute open/click events.
package clientip
