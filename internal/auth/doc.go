// Package auth issues and checks bearer tokens for remote requesters.
//
// When security.jwt.secret is set, the REST request and release routes
// require an HS256 token. The token subject becomes the request source, so
// a panel cannot release a rule another panel asked for.
//
// Tokens are minted offline with "sigos token <source>".
package auth
