// Package dockerhub provides an HTTP client for the Docker Hub tag listing API.
//
// Only images hosted on Docker Hub are addressable. Official images live in
// the "library" namespace, so "node" is queried as "library/node".
//
//	client := dockerhub.NewClient(nil, 0)
//	tags, err := client.Tags(ctx, "library", "node")
//
// One page of up to 100 tags is fetched, in the order Docker Hub returns
// them (most recently pushed first).
package dockerhub
