// Package adapter turns external CFG descriptors into the internal
// graph/cfg model. It provides two readers: DecodeDescriptor for the
// fixed binary layout a host process marshals across the native-ABI
// boundary, and ParseTextual/ParseYAML for the line-oriented and
// YAML-flavored formats used by tests.
package adapter
