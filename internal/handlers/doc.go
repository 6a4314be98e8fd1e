// Package handlers provides the JSON HTTP surface of media-stage.
//
// It includes handlers for:
//   - Layout planning and committed plan lookup per post
//   - Visibility reports from the client's scroll position
//   - The fullscreen presentation state machine
//   - Aspect ratio snapshots and probing of fetched media bytes
//   - Blurhash placeholder rendering
//   - Health checks and version information
package handlers
