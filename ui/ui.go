// Package ui holds the static chat page served at /.
package ui

import _ "embed"

//go:embed index.html
var Index []byte
