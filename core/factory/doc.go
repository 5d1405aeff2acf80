// Package factory builds pluggable modules, such as metrics sinks, from
// configuration. A module is named by its type and carries a free-form
// settings map that the registered constructor decodes into its own struct
// with Decode.
package factory
