// main.go
//
// Entry point; command handling lives in root.go and the per-command files.

package main

func main() {
	Execute()
}
