// Package command is the invocation surface of the layout engine.
//
// A Registry holds named commands the way an interactive host lists plugin
// actions. Default returns one preloaded with the three microcode commands:
//
//	AMD Microcode\Define types
//	AMD Microcode\Apply layout at file start (0x0)
//	AMD Microcode\Apply layout at cursor
//
// The last one takes an address; the others ignore it.
//
//	reg := command.Default()
//	rep, err := reg.Run(command.ApplyAtCursor, eng, 0x1000)
package command
