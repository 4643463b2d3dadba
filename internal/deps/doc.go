// Package deps reports whether the configured backend executable and its
// working directory are usable. Results feed status output and startup logs.
package deps
