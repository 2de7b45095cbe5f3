// Package github provides an HTTP client for the GitHub releases API.
//
// # Usage
//
//	client := github.NewClient(backend, token, time.Hour)
//	rel, err := client.LatestRelease(ctx, "facebook", "react", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(rel.Version())
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour.
//
// # Caching
//
// Responses are cached to reduce API calls. The cache TTL is set when
// creating the client. Pass refresh=true to bypass the cache.
package github
