// Package chat implements the conversational client: keyword intent
// classification, send-parameter extraction, named conversation threads,
// markdown reply formatting, and the terminal loop that drives the backend
// REST API.
package chat
