// Package gmail wraps the Gmail API for the operations the mailchat backend
// exposes, and normalizes raw provider messages into the fixed shape the
// HTTP surface returns.
package gmail
