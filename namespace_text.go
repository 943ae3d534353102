package main

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var textFunctions = &funcTable{
	name: "text",
	funcs: map[string]binder{
		"upper":  caser(func() cases.Caser { return cases.Upper(language.Und) }),
		"lower":  caser(func() cases.Caser { return cases.Lower(language.Und) }),
		"title":  caser(func() cases.Caser { return cases.Title(language.Und) }),
		"fields": pure(func(data string) any { return strings.Fields(data) }),
	},
}

// caser builds a new Caser per call: a Caser keeps transform state and
// bound functions may run on several workers at once.
func caser(newCaser func() cases.Caser) binder {
	return func(_ *zap.SugaredLogger) Func {
		return func(data string) any { return newCaser().String(data) }
	}
}
