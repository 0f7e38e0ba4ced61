// Package server implements the mailchat HTTP API: stateless JSON handlers
// under the /gmail/ prefix wrapping the mail provider and the completion
// API, plus health probes and a dedicated metrics listener.
//
// Every handler follows the same shape: validate input, make exactly one
// delegate call chain, and normalize the result. Errors never escape a
// handler unconverted; failures become a {"error": "..."} envelope and the
// process keeps serving.
package server
