// Package templates holds the shared page chrome for the verification site.
package templates
