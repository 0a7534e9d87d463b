// Package main is the entry point for the Scratcha dashboard service.
package main

func main() {
	Execute()
}
