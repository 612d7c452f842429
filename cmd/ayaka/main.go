// Package main provides the Ayaka CLI entry point, a reference front-end
// exercising part of the view-model façade's command surface (spec.md §6).
package main

func main() {
	Execute()
}
