// Package port defines the typed port descriptors a graph node publishes so
// the host graph can wire audio, MIDI and control buffers to it. It is pure
// data; derivation of ports from a script lives in pkg/script.
package port
