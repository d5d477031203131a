// Package emulator launches and supervises the emulator child process of a
// session.
//
// The Supervisor spawns the process at most once, through a Launcher, and
// polls it for exit. DefaultArgs builds the argument list that points the
// emulator at the relay's loopback sockets.
package emulator
