// Package zoom implements the cloud recording API client: token
// lifecycle, cursor pagination, and the user and recording list
// endpoints.
//
// # Authentication
//
// TokenProvider performs the account_credentials exchange and caches
// the bearer token until expiry:
//
//	tokens := zoom.NewTokenProvider(creds, nil)
//	client := zoom.NewClient(tokens, settings)
//
// When a call sees a 401 the provider re-acquires exactly once;
// concurrent observers of the same stale token share that single
// refresh.
//
// # Pagination
//
// List endpoints return pages linked by a next_page_token cursor. The
// client follows the cursor until it is absent, one request per page:
//
//	users, err := client.ListUsers(ctx)
//	meetings, err := client.ListRecordings(ctx, user.ID, window)
//
// Raw page shapes live in the dto subpackage and are converted to
// model types at the boundary.
package zoom
