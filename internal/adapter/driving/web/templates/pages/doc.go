// Package pages holds the full-page components.
package pages
