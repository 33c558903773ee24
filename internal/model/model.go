// Package model contains the domain types persisted by the repositories and
// returned by the HTTP API. It holds no business logic beyond small helpers.
package model
