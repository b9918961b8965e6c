// Package api exposes the task service over HTTP. It decodes and validates
// request bodies, calls the service and maps service errors to status codes
// without leaking internal error text to clients.
package api
