// Package main provides the nova CLI for host compliance audits.
package main

func main() {
	Execute()
}
