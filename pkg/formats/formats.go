// Package formats provides codecs for baked animation files.
package formats

// Note: OKF (Ocean KeyFrames) is implemented in okf.go
