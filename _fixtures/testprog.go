// testprog is a manual end-to-end fixture for vdebugger: build it with
// ASLR-independent addresses in mind (run vdebugger with --no-aslr,
// the default) and set a breakpoint on main.sleepytime's entry address
// from `go tool nm ./testprog`, then continue past it.
package main

import "time"

func sleepytime() {
	time.Sleep(time.Millisecond)
}

func main() {
	sleepytime()
	println("done")
}
