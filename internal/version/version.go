// internal/version/version.go
package version

// Version is stamped at build time:
//
//	go build -ldflags "-X puppy/internal/version.Version=v1.2.0" ./cmd/puppy
var Version = "dev"
