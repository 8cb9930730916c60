// Package main provides the entry point for the JobGuard CLI.
//
// JobGuard scans job postings for signs of fraud by sending them to a
// JobGuard server and rendering the verdict. Without a subcommand it opens
// the interactive dashboard.
//
// Usage:
//
//	jobguard
//	jobguard scan posting.txt
//	jobguard login alice
//
// See --help for all available options.
package main

func main() {
	Execute()
}
