// Package lib holds modules that do not fit strictly into other layers.
//
// It contains the outbound OpenAI client and shared utilities.
package lib
