// Package source extracts job posting text from files handed to the scan
// command: plain text, saved HTML pages and .eml job offer emails.
package source
