// Package minify provides a registry with the default JavaScript minifier.
package minify

import (
	"regexp"

	"github.com/jsmin/minify"
	"github.com/jsmin/minify/js"
)

// JSMimetype matches the JavaScript media types.
var JSMimetype = regexp.MustCompile("^(application|text)/(x-)?(java|ecma|j|live)script(1\\.[0-8])?$|^module$")

// Default minifiers for JS
var Default *minify.M

func init() {
	Default = minify.New()
	Default.AddFuncRegexp(JSMimetype, js.Minify)
}

// JS string minifier using the default minifiers
func JS(s string) (string, error) {
	return Default.String("application/javascript", s)
}
