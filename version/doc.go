// Package version reports the build version of a lazykit binary.
//
// Values come from -ldflags when set and from the embedded build info
// otherwise:
//
//	go build -ldflags "-X github.com/kbukum/lazykit/version.Version=1.0.0"
package version
