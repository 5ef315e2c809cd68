// Package github serves a repository's issue and pull request comments as a
// paginated message source.
//
// A collection is named "owner/repo". Comments are fetched oldest first,
// one API page per cursor, so an interrupted sync resumes on the page it
// stopped at. The cursor is the page number.
//
// # Authentication
//
// A personal access or OAuth token is sent as a bearer token via
// golang.org/x/oauth2. Tokens need read access to issues on private
// repositories.
//
// # Rate limiting
//
// Requests are throttled by a token bucket and, once the X-RateLimit-Remaining
// header drops below a reserve, held until X-RateLimit-Reset.
//
// # Timestamps
//
// GitHub reports creation times to the second. The comment ID modulo one
// million fills the fractional part, so two comments created in the same
// second still get distinct document IDs.
package github
