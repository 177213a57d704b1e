// Package util provides small generic helpers shared across the service
package util
