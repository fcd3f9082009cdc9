// Package console provides the operator command table and a line-oriented
// TCP server for it.
//
// A command is a list of words where "$" marks a parameter:
//
//	request $   : Request a rule by id or name
//	release $   : Release a rule by id or name
//	log $       : Show the log entry n, counted from the newest
//
// Input is split on whitespace. The first pattern with the same number of
// words whose literal words all match, ignoring case, is executed.
// Parameters keep their case. The
// remote IP address of the connection is the request source, so each
// workstation holds its own requests in the arbiter's ledger.
//
// The server speaks plain text and tolerates telnet clients: option
// negotiation sequences are dropped and lines may end in CRLF.
package console
