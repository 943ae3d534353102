package main

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

var testFunctions = &funcTable{
	name: "test_functions",
	funcs: map[string]binder{
		"identity":         pure(func(data string) any { return data }),
		"noop":             pure(func(string) any { return nil }),
		"length":           pure(func(data string) any { return len(data) }),
		"lines":            pure(func(data string) any { return countLines(data) }),
		"words":            wordCount,
		"word_frequencies": wordFrequencies,
		"sort_lines":       pure(sortLines),
		"reverse":          pure(reverse),
	},
}

func countLines(data string) int {
	if data == "" {
		return 0
	}
	n := strings.Count(data, "\n")
	if !strings.HasSuffix(data, "\n") {
		n++
	}
	return n
}

func wordCount(logger *zap.SugaredLogger) Func {
	return func(data string) any {
		n := len(strings.Fields(data))
		logger.Debugf("counted %v words", n)
		return n
	}
}

func wordFrequencies(logger *zap.SugaredLogger) Func {
	return func(data string) any {
		frequencies := make(map[string]int)
		for _, word := range strings.Fields(data) {
			frequencies[strings.ToLower(word)]++
		}
		logger.Debugf("found %v distinct words", len(frequencies))
		return frequencies
	}
}

func sortLines(data string) any {
	lines := strings.Split(data, "\n")
	slices.Sort(lines)
	return strings.Join(lines, "\n")
}

func reverse(data string) any {
	runes := []rune(data)
	slices.Reverse(runes)
	return string(runes)
}
