// Package audio loads recorded takes into immutable assets and provides the
// output devices they are played through: an oto-backed device for real
// hardware and a mock device for CI and tests.
package audio
