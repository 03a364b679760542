// Package download orchestrates the recording pipeline: it enumerates
// users and their cloud recordings, flattens them into video download
// tasks, writes the urls.txt manifest, and runs the tasks through a
// bounded concurrent pool with retry and token refresh.
package download
