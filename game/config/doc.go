// Package config manages the level catalog: loading, caching, and listing
// level descriptions from a directory of JSON and ASCII level files.
package config
