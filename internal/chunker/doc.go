// Package chunker splits a decodable audio resource into fixed-length chunks.
//
// Plan is the pure tiling of [0, duration) into intervals whose offsets are
// exact multiples of the chunk length. Split materializes those intervals
// with ffmpeg so every chunk file starts precisely at its offset, which is
// what later lets chunk-relative timestamps be rebased without drift.
package chunker
