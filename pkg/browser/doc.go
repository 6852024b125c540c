// Package browser manages the single persistent Chromium profile the bridge
// drives through Playwright.
//
// # Architecture
//
// The package is built around two concepts:
//
// 1. Manager: owns the profile lifecycle and the diagnostic Session Store
// 2. Session: the live page, exposing the actions tools are built from
//
// # Session Lifecycle
//
// A Manager starts with no Session:
//
//  1. Acquire launches a persistent context rooted at the user data directory,
//     picks its first page (or opens one) and subscribes to console, response
//     and crash events
//  2. Subsequent Acquire calls return the same Session while its page is open
//  3. A crash marks the Session dead; the next Acquire closes the old context
//     and launches again
//  4. Release closes the context; Shutdown also stops the Playwright driver
//
// Actions are not serialized. Two tool calls that navigate at the same time
// race exactly as two scripts driving one tab would.
package browser
