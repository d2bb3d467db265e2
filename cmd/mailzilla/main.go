// Package main provides the entry point for the mailzilla CLI.
//
// Mailzilla correlates identity signals for an email address or phone
// number across many platform sources and flags deception risk.
//
// Usage:
//
//	mailzilla lookup <email-or-phone>
//	mailzilla health
//
// See --help for all available options.
package main

// main is the entry point for mailzilla.
func main() {
	Execute()
}
