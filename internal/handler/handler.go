// Package handler is the first layer after the router.
//
// It decodes requests, validates input using the validation package, and
// calls the service layer. It is the interface between the HTTP request and
// the medal processing logic.
package handler
