// Package types contains the interfaces shared across titlesync packages.
package types
