// Package domain contains the core business entities and domain errors of the
// task API. It is independent of any storage, cache, or delivery mechanism.
package domain
