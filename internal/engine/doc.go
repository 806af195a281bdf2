// Package engine connects a source player and effect stages into a linear
// processing chain and feeds the result to an output device.
//
// Nodes are attached first and then connected pairwise with an explicit
// format. Start walks the chain from the player to the output stage, builds
// the sample pipeline and hands it to the device.
package engine
