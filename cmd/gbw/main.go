// Package main is the entry point for the gbw command.
package main

func main() {
	Execute()
}
